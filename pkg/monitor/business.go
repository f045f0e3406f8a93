package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics 定义业务监控指标
type BusinessMetrics struct {
	TxSignedTotal     *prometheus.CounterVec
	TxSentTotal       *prometheus.CounterVec
	TxFailedTotal     *prometheus.CounterVec
	ReceiptWait       *prometheus.HistogramVec
	BroadcastJobs     *prometheus.CounterVec
	ProviderCallTotal *prometheus.CounterVec
}

// Global Metrics Instance
var Business *BusinessMetrics

// InitBusinessMetrics 初始化业务指标
func InitBusinessMetrics() {
	Business = &BusinessMetrics{
		TxSignedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_tx_signed_total",
			Help: "The total number of signed transactions",
		}, []string{"kind"}),
		TxSentTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_tx_sent_total",
			Help: "The total number of broadcast transactions",
		}, []string{"kind"}),
		TxFailedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_tx_failed_total",
			Help: "Failed transactions by pipeline stage",
		}, []string{"kind", "stage"}),
		ReceiptWait: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wallet_receipt_wait_seconds",
			Help:    "Time spent waiting for receipts",
			Buckets: []float64{1, 2, 5, 10, 30, 60, 120},
		}, []string{"kind", "result"}),
		BroadcastJobs: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_broadcast_jobs_total",
			Help: "Broadcaster worker jobs by outcome",
		}, []string{"status"}),
		ProviderCallTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_provider_calls_total",
			Help: "Provider RPC calls by method and cache result",
		}, []string{"method", "source"}),
	}
}
