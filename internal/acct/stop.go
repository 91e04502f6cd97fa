package acct

import (
	"context"
	"log/slog"

	"github.com/Ali-Mohammed/openRadius-sub017/internal/metrics"
	"github.com/Ali-Mohammed/openRadius-sub017/internal/radius"
	"github.com/Ali-Mohammed/openRadius-sub017/internal/session"
)

// ProcessStop はAcct-Stop処理を行う。
// レコード削除・インデックス除去・カウンタ減算に加え、同ユーザーの
// Janitorスイープを毎回実行する。削除直前の存在確認により、Stop重複では
// カウンタを減算しない。
func (p *Processor) ProcessStop(ctx context.Context, attrs *radius.AccountingAttributes, srcIP, traceID string) error {
	if p.noop(attrs, srcIP, traceID) {
		return nil
	}
	metrics.AccountingEvents.WithLabelValues("stop").Inc()

	sess := p.buildSession(attrs, srcIP, session.EventKindStop)
	p.forgetThrottle(attrs.UserName)

	result, err := p.sessions.RemoveOnStop(ctx, sess)
	if err != nil {
		logStoreError("stop", traceID, err)
		return nil
	}

	if !result.Existed {
		// Stop重複またはTTL失効後のStop。インデックス除去のみ行われている。
		slog.Debug("stop for absent session",
			"event_id", "ACCT_DUPLICATE_STOP",
			"trace_id", traceID,
			"src_ip", srcIP,
			"acct_session_id", attrs.AcctSessionID,
		)
	}

	if result.Sweep.Pruned > 0 {
		metrics.JanitorPruned.Add(float64(result.Sweep.Pruned))
	}

	slog.Info("accounting stop",
		"event_id", "ACCT_STOP",
		"trace_id", traceID,
		"src_ip", srcIP,
		"username", p.maskedUsername(attrs.UserName),
		"acct_session_id", attrs.AcctSessionID,
		"session_time", attrs.SessionTime,
		"input_bytes", sess.InputBytes,
		"output_bytes", sess.OutputBytes,
		"terminate_cause", radius.TerminateCauseName(attrs.TerminateCause),
		"user_offline", result.Sweep.UserOffline,
	)

	return nil
}
