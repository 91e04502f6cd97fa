// Package metrics はPrometheusメトリクスを提供する。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AccountingEvents はAcct-Status-Type別の処理イベント数。
	AccountingEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "radius_accounting_events_total",
		Help: "Total accounting events processed, by Acct-Status-Type.",
	}, []string{"status_type"})

	// MalformedEvents はno-op分類（Session-Id/User-Name欠落）となったイベント数。
	MalformedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "radius_accounting_malformed_total",
		Help: "Total accounting events dropped as no-op due to missing identifiers.",
	})

	// StoreFailures はストア呼び出し失敗数（接続不可・応答異常）。
	StoreFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "online_store_failures_total",
		Help: "Total failed store calls, by failure kind.",
	}, []string{"kind"})

	// JanitorPruned はJanitorスイープで除去した失効インデックスメンバー数。
	JanitorPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "online_index_stale_pruned_total",
		Help: "Total stale index members pruned by the lazy janitor.",
	})

	// NASTeardownSessions はAccounting-On/Offで一括解放したセッション数。
	NASTeardownSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "online_nas_teardown_sessions_total",
		Help: "Total live sessions removed by NAS bulk teardown.",
	})
)

// ストア失敗種別（StoreFailuresのkindラベル値）
const (
	FailureKindUnavailable = "unavailable"
	FailureKindReply       = "unexpected_reply"
)

// Handler はPrometheusエクスポジション用のHTTPハンドラを返す。
func Handler() http.Handler {
	return promhttp.Handler()
}
