package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(messagesSentTotal) }

var messagesSentTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "messenger_messages_sent_total",
		Help: "Outbound messages by platform and result (ok/rejected/error).",
	},
	[]string{"platform", "status"},
)

func IncMessageSent(platform, status string) {
	messagesSentTotal.WithLabelValues(norm(platform), norm(status)).Inc()
}
