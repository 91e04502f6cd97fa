package acct

import (
	"context"
	"log/slog"

	"github.com/Ali-Mohammed/openRadius-sub017/internal/metrics"
	"github.com/Ali-Mohammed/openRadius-sub017/internal/radius"
	"github.com/Ali-Mohammed/openRadius-sub017/internal/session"
)

// ProcessInterim はAcct-Interim処理を行う。
// レコードを全フィールド上書きし、TTLとインデックス登録を更新する。
// N回に1回、同ユーザーのJanitorスイープを実行する。
func (p *Processor) ProcessInterim(ctx context.Context, attrs *radius.AccountingAttributes, srcIP, traceID string) error {
	if p.noop(attrs, srcIP, traceID) {
		return nil
	}
	metrics.AccountingEvents.WithLabelValues("interim").Inc()

	sess := p.buildSession(attrs, srcIP, session.EventKindInterim)

	result, err := p.sessions.UpdateOnInterim(ctx, sess, attrs.InterimInterval)
	if err != nil {
		logStoreError("interim", traceID, err)
		return nil
	}

	// StartなしのInterim（Startロスト）。上書き作成済み、カウンタは変更しない。
	if result.WithoutStart {
		slog.Warn("interim without start",
			"event_id", "ACCT_SEQUENCE_ERR",
			"trace_id", traceID,
			"src_ip", srcIP,
			"acct_session_id", attrs.AcctSessionID,
			"reason", "no_start_received",
		)
	}

	if p.shouldSweep(attrs.UserName) {
		sweep, err := p.sessions.Sweep(ctx, attrs.UserName)
		if err != nil {
			logStoreError("interim_sweep", traceID, err)
		} else if sweep.Pruned > 0 {
			metrics.JanitorPruned.Add(float64(sweep.Pruned))
			slog.Info("janitor sweep",
				"event_id", "JANITOR_SWEEP",
				"trace_id", traceID,
				"username", p.maskedUsername(attrs.UserName),
				"pruned", sweep.Pruned,
				"live", sweep.Live,
			)
		}
	}

	slog.Info("accounting interim",
		"event_id", "ACCT_INTERIM",
		"trace_id", traceID,
		"src_ip", srcIP,
		"username", p.maskedUsername(attrs.UserName),
		"acct_session_id", attrs.AcctSessionID,
		"session_time", attrs.SessionTime,
		"input_bytes", sess.InputBytes,
		"output_bytes", sess.OutputBytes,
	)

	return nil
}
