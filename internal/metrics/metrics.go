package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "notifier"

var (
	MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_total",
		Help:      "WhatsApp sends by loop and outcome.",
	}, []string{"loop", "status"})

	InvoicesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invoices_created_total",
		Help:      "Invoices generated by the invoice loop.",
	})

	TickDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tick_duration_seconds",
		Help:      "Duration of one scheduler tick.",
		Buckets:   []float64{0.05, 0.25, 1, 5, 15, 60, 300, 900},
	}, []string{"loop"})

	GatewayConnected = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "gateway_connected",
		Help:      "Last observed gateway connection state per tenant (1 = open).",
	}, []string{"tenant"})

	ReprocessTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reprocess_total",
		Help:      "Reconnect resend passes by path (remote or local).",
	}, []string{"path"})
)
