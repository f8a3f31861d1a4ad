package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(webhookEventsTotal)
}

var webhookEventsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Gateway webhook events by outcome (accepted/processed/duplicate/stale/orphan/error/...).",
	},
	[]string{"gateway", "event", "result"},
)

func IncWebhookEvent(gateway, event, result string) {
	webhookEventsTotal.WithLabelValues(norm(gateway), norm(event), norm(result)).Inc()
}
