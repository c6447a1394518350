// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WeatherCollector は天気プロキシのメトリクス収集のインターフェース。
// ハンドラー層から利用する。
type WeatherCollector interface {
	RecordLookupSuccess(mode string)
	RecordLookupFailure(mode string, reason string)
	RecordVendorStatus(statusCode int)
	RecordVendorLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	lookupSuccess *prometheus.CounterVec
	lookupFail    *prometheus.CounterVec
	vendorStatus  *prometheus.CounterVec
	vendorLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		lookupSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studenthub_weather_lookup_success_total",
			Help: "天気取得成功の合計数（モード別）",
		}, []string{"mode"}),
		lookupFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studenthub_weather_lookup_fail_total",
			Help: "天気取得失敗の合計数（モード・理由別）",
		}, []string{"mode", "reason"}),
		vendorStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studenthub_weather_vendor_status_total",
			Help: "ベンダーHTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		vendorLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "studenthub_weather_vendor_latency_seconds",
			Help:    "ベンダー呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.lookupSuccess,
		c.lookupFail,
		c.vendorStatus,
		c.vendorLatency,
	)

	return c
}

// RecordLookupSuccess は天気取得成功を記録する。
func (c *Collector) RecordLookupSuccess(mode string) {
	c.lookupSuccess.WithLabelValues(mode).Inc()
}

// RecordLookupFailure は天気取得失敗を記録する。
func (c *Collector) RecordLookupFailure(mode string, reason string) {
	c.lookupFail.WithLabelValues(mode, reason).Inc()
}

// RecordVendorStatus はベンダーのHTTPステータスコードを記録する。
func (c *Collector) RecordVendorStatus(statusCode int) {
	c.vendorStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordVendorLatency はベンダー呼び出しのレイテンシを記録する。
func (c *Collector) RecordVendorLatency(duration time.Duration) {
	c.vendorLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ WeatherCollector = (*Collector)(nil)
