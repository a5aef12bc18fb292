package dialogue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	turnsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pawpal_dialogue_turns_total",
		Help: "Conversation turns processed by the reminder flow.",
	})
	turnsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pawpal_dialogue_turns_failed_total",
		Help: "Turns that hit an unexpected internal failure.",
	})
	extractionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pawpal_dialogue_extraction_failures_total",
		Help: "Extraction calls that errored or timed out and were degraded to an empty turn.",
	})
	remindersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pawpal_reminders_created_total",
		Help: "Reminder records persisted by the conversational flow.",
	})
	broadcastPartial = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pawpal_dialogue_broadcast_partial_total",
		Help: "Broadcast creations where some but not all pets failed.",
	})
	flowsAbandoned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pawpal_dialogue_flows_abandoned_total",
		Help: "Flows abandoned after exhausting the correction turn cap.",
	})
)
