package acct

import (
	"context"
	"log/slog"

	"github.com/Ali-Mohammed/openRadius-sub017/internal/metrics"
	"github.com/Ali-Mohammed/openRadius-sub017/internal/radius"
	"github.com/Ali-Mohammed/openRadius-sub017/internal/session"
)

// ProcessStart はAcct-Start処理を行う。
// レコード作成・インデックス登録・カウンタ加算を1イベント分として発行する。
func (p *Processor) ProcessStart(ctx context.Context, attrs *radius.AccountingAttributes, srcIP, traceID string) error {
	if p.noop(attrs, srcIP, traceID) {
		return nil
	}
	metrics.AccountingEvents.WithLabelValues("start").Inc()

	sess := p.buildSession(attrs, srcIP, session.EventKindStart)

	result, err := p.sessions.UpdateOnStart(ctx, sess, attrs.InterimInterval)
	if err != nil {
		logStoreError("start", traceID, err)
		return nil
	}

	// 同一キーのStart重複（順序異常）。上書き済みでカウンタは進めていない。
	if result.AlreadyActive {
		slog.Warn("duplicate accounting start",
			"event_id", "ACCT_SEQUENCE_ERR",
			"trace_id", traceID,
			"src_ip", srcIP,
			"acct_session_id", attrs.AcctSessionID,
			"reason", "start_for_active_session",
		)
	}

	slog.Info("accounting start",
		"event_id", "ACCT_START",
		"trace_id", traceID,
		"src_ip", srcIP,
		"username", p.maskedUsername(attrs.UserName),
		"acct_session_id", attrs.AcctSessionID,
		"nas_ip", sess.NASIPAddress,
		"framed_ip", attrs.FramedIPAddress,
		"ttl", result.TTL.String(),
		"new_user", result.NewUser,
	)

	return nil
}
