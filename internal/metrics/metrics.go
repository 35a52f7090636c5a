package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WebhookEvents counts inbound webhook deliveries by event type.
var WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "whatsapp_webhook_events_total",
	Help: "Inbound webhook events by type.",
}, []string{"type"})

// OutboundMessages counts messages sent to the provider by kind and outcome.
var OutboundMessages = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "whatsapp_outbound_messages_total",
	Help: "Outbound provider sends by message kind and outcome.",
}, []string{"kind", "outcome"})

// SessionResolutions counts session resolver outcomes by state.
var SessionResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "session_resolutions_total",
	Help: "Session resolver outcomes by resulting state.",
}, []string{"state"})
