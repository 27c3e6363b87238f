// Package metrics 提供 Prometheus helper，包含常用 counter/gauge/histogram 模板
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyfcoding/launchpad/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 业务指标
	SalesCreatedTotal prometheus.Counter
	PurchasesTotal    prometheus.Counter
	SalesClosedTotal  prometheus.Counter
	WithdrawalsTotal  prometheus.Counter
	SalesOpen         prometheus.Gauge
}

// New 创建指标实例并注册到默认 registry
func New(serviceName string) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "launchpad",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "launchpad",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SalesCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "launchpad",
			Subsystem: serviceName,
			Name:      "sales_created_total",
			Help:      "Total sales listed",
		}),
		PurchasesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "launchpad",
			Subsystem: serviceName,
			Name:      "purchases_total",
			Help:      "Total successful purchases",
		}),
		SalesClosedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "launchpad",
			Subsystem: serviceName,
			Name:      "sales_closed_total",
			Help:      "Total sales that reached their closing condition",
		}),
		WithdrawalsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "launchpad",
			Subsystem: serviceName,
			Name:      "withdrawals_total",
			Help:      "Total treasury withdrawals",
		}),
		SalesOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "launchpad",
			Subsystem: serviceName,
			Name:      "sales_open",
			Help:      "Number of currently open sales",
		}),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SalesCreatedTotal,
		m.PurchasesTotal,
		m.SalesClosedTotal,
		m.WithdrawalsTotal,
		m.SalesOpen,
	)

	return m
}

// ExposeHTTP 在独立端口暴露 /metrics
func (m *Metrics) ExposeHTTP(port int, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "Metrics server starting", "addr", addr, "path", path)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error(context.Background(), "Metrics server failed", "error", err)
	}
}
