// Package metrics holds the process-wide Prometheus collectors. Counters are
// package level so call sites do not need a handle threaded through every
// constructor.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	JobsScheduled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engagesphere_jobs_scheduled_total",
		Help: "Engagement jobs handed to the scheduler, by kind.",
	}, []string{"kind"})

	JobsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engagesphere_jobs_skipped_total",
		Help: "Engagement jobs dropped at planning time because their due time had passed.",
	}, []string{"kind"})

	JobsFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engagesphere_jobs_fired_total",
		Help: "Scheduled jobs whose timers fired and ran, by kind.",
	}, []string{"kind"})

	JobsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engagesphere_jobs_cancelled_total",
		Help: "Jobs removed from the scheduler before firing.",
	})

	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engagesphere_messages_sent_total",
		Help: "Messages delivered (or simulated), by channel.",
	}, []string{"channel"})

	MessagesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engagesphere_messages_failed_total",
		Help: "Message sends that returned an error, by channel.",
	}, []string{"channel"})

	RegistrationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engagesphere_registrations_created_total",
		Help: "Successful event registrations.",
	})

	RegistrationsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engagesphere_registrations_cancelled_total",
		Help: "Registrations removed by user request or event deletion.",
	})

	ChatIntents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engagesphere_chat_intents_total",
		Help: "Chat turns by resolved intent (action name, conversational, or fallback).",
	}, []string{"intent"})
)

// Handler serves the default registry, which promauto registers into.
func Handler() http.Handler {
	return promhttp.Handler()
}
