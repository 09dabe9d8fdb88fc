// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する。
type Collector struct {
	httpStatus     *prometheus.CounterVec
	authDenials    *prometheus.CounterVec
	requestLatency prometheus.Histogram
	productWrites  *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storeman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		authDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storeman_auth_denials_total",
			Help: "認可拒否の理由別の合計数",
		}, []string{"reason"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storeman_request_latency_seconds",
			Help:    "リクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		productWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storeman_product_writes_total",
			Help: "商品への書き込み操作の合計数",
		}, []string{"operation"}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.authDenials,
		c.requestLatency,
		c.productWrites,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordAuthDenial は認可拒否を理由別に記録する。
func (c *Collector) RecordAuthDenial(reason string) {
	c.authDenials.WithLabelValues(reason).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordProductWrite は商品への書き込み操作を記録する。
func (c *Collector) RecordProductWrite(operation string) {
	c.productWrites.WithLabelValues(operation).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
