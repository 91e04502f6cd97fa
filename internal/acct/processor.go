// Package acct はAccountingイベントの状態遷移処理を提供する。
package acct

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Ali-Mohammed/openRadius-sub017/internal/logging"
	"github.com/Ali-Mohammed/openRadius-sub017/internal/metrics"
	"github.com/Ali-Mohammed/openRadius-sub017/internal/radius"
	"github.com/Ali-Mohammed/openRadius-sub017/internal/session"
	"github.com/Ali-Mohammed/openRadius-sub017/internal/store"
)

// Processor はAccounting処理のメインロジック。
// ストア障害はログとメトリクスに記録して処理を継続する。
// エラーをAAA応答経路に伝播させてはならない。
type Processor struct {
	sessions     session.Manager
	janitorEvery int
	maskUsername bool

	// ユーザー毎のInterim受信カウンタ（Janitorスロットル用）。
	// プロセス内限定で、再起動でリセットされる。
	mu            sync.Mutex
	interimCounts map[string]int
}

// NewProcessor は新しいProcessorを生成する。
func NewProcessor(sm session.Manager, janitorEvery int, maskUsername bool) *Processor {
	if janitorEvery < 1 {
		janitorEvery = 1
	}
	return &Processor{
		sessions:      sm,
		janitorEvery:  janitorEvery,
		maskUsername:  maskUsername,
		interimCounts: make(map[string]int),
	}
}

// noop はSession-Id/User-Name欠落イベントをno-op分類する。
// trueの場合、呼び出し側はストア操作を一切発行しない。
func (p *Processor) noop(attrs *radius.AccountingAttributes, srcIP, traceID string) bool {
	if attrs.AcctSessionID != "" && attrs.UserName != "" {
		return false
	}
	metrics.MalformedEvents.Inc()
	slog.Debug("malformed accounting event, no-op",
		"event_id", "ACCT_MALFORMED",
		"trace_id", traceID,
		"src_ip", srcIP,
		"status_type", radius.StatusTypeName(attrs.AcctStatusType),
		"has_session_id", attrs.AcctSessionID != "",
		"has_username", attrs.UserName != "",
	)
	return true
}

// nasAddress はイベントのNASアドレスを決定する。
// NAS-IP-Address属性欠落時はパケット送信元IPを使用する。
func nasAddress(attrs *radius.AccountingAttributes, srcIP string) string {
	if attrs.NasIPAddress != "" {
		return attrs.NasIPAddress
	}
	return srcIP
}

// buildSession は属性からセッションレコードを組み立てる。
// バイトカウンタはギガワード補正済みの値を格納する。
// started_atはAAAサーバー報告のセッション経過秒から逆算する
// （Interimでの全フィールド上書きでも開始時刻が安定する）。
func (p *Processor) buildSession(attrs *radius.AccountingAttributes, srcIP, eventKind string) *session.Session {
	now := time.Now().Unix()
	return &session.Session{
		Username:         attrs.UserName,
		SessionID:        attrs.AcctSessionID,
		NASIPAddress:     nasAddress(attrs, srcIP),
		FramedIPAddress:  attrs.FramedIPAddress,
		CalledStationID:  attrs.CalledStationID,
		CallingStationID: attrs.CallingStationID,
		NASPort:          attrs.NASPort,
		SessionTime:      int64(attrs.SessionTime),
		InputBytes:       attrs.TotalInputBytes(),
		OutputBytes:      attrs.TotalOutputBytes(),
		StartedAt:        now - int64(attrs.SessionTime),
		UpdatedAt:        now,
		EventKind:        eventKind,
	}
}

// shouldSweep はこのInterimでJanitorスイープを実行すべきかを判定する。
// N回に1回のみtrueを返す（スイープコストはインデックス要素数に比例するため）。
func (p *Processor) shouldSweep(username string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.interimCounts[username]++
	return p.interimCounts[username]%p.janitorEvery == 0
}

// forgetThrottle はユーザーのスロットルカウンタを破棄する（Stop時）。
func (p *Processor) forgetThrottle(username string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.interimCounts, username)
}

// maskedUsername はログ出力用のユーザー名を返す。
func (p *Processor) maskedUsername(username string) string {
	return logging.MaskUsername(username, p.maskUsername)
}

// logStoreError はストア呼び出し失敗を分類してログ・メトリクスに記録する。
// 障害はイベント処理を中断させない（best-effortな派生インデックスであり、
// 記録系の正本はここではない）。
func logStoreError(op, traceID string, err error) {
	switch {
	case errors.Is(err, store.ErrStoreUnavailable):
		metrics.StoreFailures.WithLabelValues(metrics.FailureKindUnavailable).Inc()
		slog.Warn("store unavailable, event skipped",
			"event_id", "VALKEY_CONN_ERR",
			"trace_id", traceID,
			"op", op,
			"error", err.Error(),
		)
	case errors.Is(err, store.ErrUnexpectedReply):
		metrics.StoreFailures.WithLabelValues(metrics.FailureKindReply).Inc()
		slog.Error("unexpected store reply",
			"event_id", "VALKEY_REPLY_ERR",
			"trace_id", traceID,
			"op", op,
			"error", err.Error(),
		)
	default:
		slog.Error("store operation failed",
			"event_id", "SYS_ERR",
			"trace_id", traceID,
			"op", op,
			"error", err.Error(),
		)
	}
}
