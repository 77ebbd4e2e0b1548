package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		commandsReceivedTotal,
		rateLimitTriggeredTotal,
	)
}

var (
	commandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_received_total",
			Help: "Counts incoming chat commands from users.",
		},
		[]string{"command"},
	)

	rateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_rate_limit_triggered_total",
			Help: "Total number of times senders have been rate-limited.",
		},
	)
)

func IncCommand(command string) {
	commandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncRateLimitTriggered() {
	rateLimitTriggeredTotal.Inc()
}
