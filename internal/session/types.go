package session

import (
	"time"

	"github.com/Ali-Mohammed/openRadius-sub017/internal/store"
)

// イベント種別（event_kindフィールド値）
const (
	EventKindStart   = "start"
	EventKindInterim = "interim"
	EventKindStop    = "stop"
)

// Session はアクティブセッションレコードを表す。
// カウンタはギガワード補正済みの累積値を保持する。
type Session struct {
	Username         string `redis:"username"`
	SessionID        string `redis:"session_id"`
	NASIPAddress     string `redis:"nas_ip"`
	FramedIPAddress  string `redis:"framed_ip"`
	CalledStationID  string `redis:"called_station_id"`
	CallingStationID string `redis:"calling_station_id"`
	NASPort          string `redis:"nas_port"`
	SessionTime      int64  `redis:"session_time"`
	InputBytes       uint64 `redis:"input_bytes"`
	OutputBytes      uint64 `redis:"output_bytes"`
	StartedAt        int64  `redis:"started_at"`
	UpdatedAt        int64  `redis:"updated_at"`
	EventKind        string `redis:"event_kind"`
}

// Key はセッションレコードのValkeyキーを返す。
func (s *Session) Key() string {
	return store.SessionKey(s.NASIPAddress, s.SessionID)
}

// StartResult はStart処理のストア反映結果。
type StartResult struct {
	// AlreadyActive は同一キーのレコードが既に存在していた場合にtrue（Start重複）
	AlreadyActive bool
	// NewUser はユーザーインデックスが空の状態からの遷移だった場合にtrue
	NewUser bool
	// TTL は適用されたセッションTTL
	TTL time.Duration
}

// InterimResult はInterim処理のストア反映結果。
type InterimResult struct {
	// WithoutStart はStart未受信（レコード不在）のInterimだった場合にtrue
	WithoutStart bool
}

// StopResult はStop処理のストア反映結果。
type StopResult struct {
	// Existed は削除直前にレコードが存在していた場合にtrue（カウンタ減算の条件）
	Existed bool
	// Sweep はStopに伴うスイープの結果
	Sweep SweepResult
}

// SweepResult はJanitorスイープの結果。
type SweepResult struct {
	// Live はスイープ後に残ったライブメンバー数
	Live int
	// Pruned は除去した失効メンバー数
	Pruned int
	// UserOffline はユーザーをオンライン集合から外した場合にtrue
	UserOffline bool
}

// TeardownResult はNAS一括解放の結果。
type TeardownResult struct {
	// Members はNASインデックスに登録されていたセッションキー数
	Members int
	// Live は列挙時点で生存していたセッション数（カウンタ減算分）
	Live int
	// UsersOffline は解放によりオフラインになったユーザー名
	UsersOffline []string
}
