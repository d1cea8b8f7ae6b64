package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics は台帳サービスのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 予約の状態遷移の総数（operation: reserve/confirm/cancel/complete/no_show, result: success/error など）
	BookingTransitionsTotal *prometheus.CounterVec

	// confirm 時の在庫不足の総数（kind: hotel/route）
	CapacityConflictsTotal *prometheus.CounterVec

	// 決済検証の総数（result: success/invalid_signature/capacity/error）
	PaymentVerificationsTotal *prometheus.CounterVec

	// 分散ロックの操作時間（operation: acquire/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec

	// 空き在庫キャッシュの参照数（result: hit/miss）
	AvailabilityCacheTotal *prometheus.CounterVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		BookingTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_transitions_total",
				Help: "Total number of booking ledger operations by result",
			},
			[]string{"operation", "result"},
		),
		CapacityConflictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_capacity_conflicts_total",
				Help: "Total number of confirms rejected for insufficient capacity",
			},
			[]string{"kind"},
		),
		PaymentVerificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_verifications_total",
				Help: "Total number of payment verifications by result",
			},
			[]string{"result"},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
		AvailabilityCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "availability_cache_lookups_total",
				Help: "Total number of availability cache lookups",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BookingTransitionsTotal,
		m.CapacityConflictsTotal,
		m.PaymentVerificationsTotal,
		m.DistributedLockDuration,
		m.AvailabilityCacheTotal,
	)

	return m
}

// ObserveTransition は台帳操作の結果を記録する
func (m *Metrics) ObserveTransition(operation, result string) {
	m.BookingTransitionsTotal.WithLabelValues(operation, result).Inc()
}

// ObserveCapacityConflict は在庫不足による confirm 失敗を記録する
func (m *Metrics) ObserveCapacityConflict(kind string) {
	m.CapacityConflictsTotal.WithLabelValues(kind).Inc()
}

// ObservePaymentVerification は決済検証の結果を記録する
func (m *Metrics) ObservePaymentVerification(result string) {
	m.PaymentVerificationsTotal.WithLabelValues(result).Inc()
}

// ObserveLock は分散ロック操作の所要時間を記録する
func (m *Metrics) ObserveLock(operation string, ok bool, elapsed time.Duration) {
	status := "success"
	if !ok {
		status = "failed"
	}
	m.DistributedLockDuration.WithLabelValues(operation, status).Observe(elapsed.Seconds())
}

// ObserveCache は空き在庫キャッシュのヒット・ミスを記録する
func (m *Metrics) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.AvailabilityCacheTotal.WithLabelValues(result).Inc()
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
