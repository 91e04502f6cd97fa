package session

import "context"

// Manager はセッション状態管理のインターフェース。
// 各操作は1イベント分のストアコマンドをパイプラインにまとめて発行する。
type Manager interface {
	// UpdateOnStart はStart受信時のレコード作成とインデックス登録を行う
	UpdateOnStart(ctx context.Context, sess *Session, interimInterval uint32) (*StartResult, error)
	// UpdateOnInterim はInterim受信時のレコード上書きとTTL更新を行う
	UpdateOnInterim(ctx context.Context, sess *Session, interimInterval uint32) (*InterimResult, error)
	// RemoveOnStop はStop受信時のレコード削除とインデックス除去を行う
	RemoveOnStop(ctx context.Context, sess *Session) (*StopResult, error)
	// TeardownNAS はAccounting-On/Off受信時のNAS配下セッション一括解放を行う
	TeardownNAS(ctx context.Context, nasIP string) (*TeardownResult, error)
	// Sweep は指定ユーザーのインデックスから失効メンバーを除去する
	Sweep(ctx context.Context, username string) (*SweepResult, error)
	// Get はセッションレコードを取得する
	Get(ctx context.Context, nasIP, sessionID string) (*Session, error)
}
