// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラー・サービス・ワーカーの各層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordAuthAttempt(operation string, success bool)
	RecordProviderLatency(operation string, duration time.Duration)
	RecordTranscriptsDeleted(count int)
	RecordDraftsDeleted(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus         *prometheus.CounterVec
	authAttempts       *prometheus.CounterVec
	providerLatency    *prometheus.HistogramVec
	transcriptsDeleted prometheus.Counter
	draftsDeleted      prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prepview_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prepview_auth_attempts_total",
			Help: "認証操作別の試行数",
		}, []string{"operation", "result"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prepview_provider_latency_seconds",
			Help:    "IDプロバイダー呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		transcriptsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prepview_transcripts_deleted_total",
			Help: "保持期限切れで削除されたトランスクリプトの合計数",
		}),
		draftsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prepview_drafts_deleted_total",
			Help: "未確定のまま期限切れで削除された面接レコードの合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.authAttempts,
		c.providerLatency,
		c.transcriptsDeleted,
		c.draftsDeleted,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordAuthAttempt は認証操作の試行結果を記録する。
// operationはsignup/signin/sessionのいずれか。
func (c *Collector) RecordAuthAttempt(operation string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.authAttempts.WithLabelValues(operation, result).Inc()
}

// RecordProviderLatency はIDプロバイダー呼び出しのレイテンシを記録する。
func (c *Collector) RecordProviderLatency(operation string, duration time.Duration) {
	c.providerLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordTranscriptsDeleted は削除されたトランスクリプト数を記録する。
func (c *Collector) RecordTranscriptsDeleted(count int) {
	c.transcriptsDeleted.Add(float64(count))
}

// RecordDraftsDeleted は削除された未確定レコード数を記録する。
func (c *Collector) RecordDraftsDeleted(count int) {
	c.draftsDeleted.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
