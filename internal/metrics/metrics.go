package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketsync_messages_received_total",
		Help: "Messages received from the data server, by resource tag.",
	},
		[]string{"resource"},
	)
	MessagesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketsync_messages_dropped_total",
		Help: "Messages dropped by the router, by reason.",
	},
		[]string{"reason"},
	)
	RequestsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketsync_requests_sent_total",
		Help: "Requests written to the data server, by resource tag.",
	},
		[]string{"resource"},
	)
	SendErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketsync_send_errors_total",
		Help: "Requests that could not be written, by resource tag.",
	},
		[]string{"resource"},
	)
	RefreshFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketsync_refresh_fired_total",
		Help: "Refresh timers that fired, by resource tag.",
	},
		[]string{"resource"},
	)
	Connected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "marketsync_connected",
		Help: "1 while the data server connection is open.",
	})
)
