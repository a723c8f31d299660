// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はディレクトリ操作とHTTPレスポンスのメトリクスを収集する。
// internal/directoryのMetricsRecorderと
// internal/middlewareのHTTPStatusRecorderを実装する。
type Collector struct {
	signupSuccess      *prometheus.CounterVec
	signupRejected     *prometheus.CounterVec
	unregisterSuccess  *prometheus.CounterVec
	unregisterRejected *prometheus.CounterVec
	rosterSize         *prometheus.GaugeVec
	httpStatus         *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signupSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubroster_signup_success_total",
			Help: "参加登録成功の合計数",
		}, []string{"activity"}),
		signupRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubroster_signup_rejected_total",
			Help: "参加登録拒否の合計数（拒否理由別）",
		}, []string{"activity", "reason"}),
		unregisterSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubroster_unregister_success_total",
			Help: "登録解除成功の合計数",
		}, []string{"activity"}),
		unregisterRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubroster_unregister_rejected_total",
			Help: "登録解除拒否の合計数（拒否理由別）",
		}, []string{"activity", "reason"}),
		rosterSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "clubroster_roster_size",
			Help: "活動ごとの現在の参加者数",
		}, []string{"activity"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubroster_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.signupSuccess,
		c.signupRejected,
		c.unregisterSuccess,
		c.unregisterRejected,
		c.rosterSize,
		c.httpStatus,
	)

	return c
}

// RecordSignUp は参加登録成功を記録する。
func (c *Collector) RecordSignUp(activity string) {
	c.signupSuccess.WithLabelValues(activity).Inc()
}

// RecordSignUpRejected は参加登録拒否を拒否理由付きで記録する。
func (c *Collector) RecordSignUpRejected(activity, reason string) {
	c.signupRejected.WithLabelValues(activity, reason).Inc()
}

// RecordUnregister は登録解除成功を記録する。
func (c *Collector) RecordUnregister(activity string) {
	c.unregisterSuccess.WithLabelValues(activity).Inc()
}

// RecordUnregisterRejected は登録解除拒否を拒否理由付きで記録する。
func (c *Collector) RecordUnregisterRejected(activity, reason string) {
	c.unregisterRejected.WithLabelValues(activity, reason).Inc()
}

// SetRosterSize は活動の現在の参加者数を記録する。
func (c *Collector) SetRosterSize(activity string, size int) {
	c.rosterSize.WithLabelValues(activity).Set(float64(size))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// APIサーバーとは別ポートで待ち受けることを想定している。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
