package acct

import (
	"context"
	"log/slog"

	"github.com/Ali-Mohammed/openRadius-sub017/internal/metrics"
	"github.com/Ali-Mohammed/openRadius-sub017/internal/radius"
)

// ProcessNASReset はAccounting-On/Off処理を行う。
// NAS再起動通知とみなし、当該NAS配下の全セッションを一括解放する。
// これらのイベントはSession-Id/User-Nameを持たないため、no-op分類は
// NASアドレスの有無のみで判定する。
func (p *Processor) ProcessNASReset(ctx context.Context, attrs *radius.AccountingAttributes, srcIP, traceID string) error {
	statusName := radius.StatusTypeName(attrs.AcctStatusType)

	nasIP := nasAddress(attrs, srcIP)
	if nasIP == "" {
		metrics.MalformedEvents.Inc()
		slog.Debug("nas reset without nas address, no-op",
			"event_id", "ACCT_MALFORMED",
			"trace_id", traceID,
			"status_type", statusName,
		)
		return nil
	}
	metrics.AccountingEvents.WithLabelValues("nas_reset").Inc()

	result, err := p.sessions.TeardownNAS(ctx, nasIP)
	if err != nil {
		logStoreError("nas_reset", traceID, err)
		return nil
	}

	metrics.NASTeardownSessions.Add(float64(result.Live))

	slog.Info("nas bulk teardown",
		"event_id", "ACCT_NAS_RESET",
		"trace_id", traceID,
		"src_ip", srcIP,
		"status_type", statusName,
		"nas_ip", nasIP,
		"index_members", result.Members,
		"live_sessions", result.Live,
		"users_offline", len(result.UsersOffline),
	)

	return nil
}
