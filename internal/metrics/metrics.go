package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every relayo collector plus the Go and process collectors.
var Registry = prometheus.NewRegistry()

var (
	SyncRunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relayo_sync_runs_total",
			Help: "Number of reservation sync runs started.",
		},
	)

	SyncIntegrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relayo_sync_integrations_total",
			Help: "Calendar integrations processed by the reservation sync, by result.",
		},
		[]string{"result"},
	)

	SyncEventsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relayo_sync_events_total",
			Help: "Calendar events reconciled into reservations.",
		},
	)

	SheetMirrorFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relayo_sheet_mirror_failures_total",
			Help: "Spreadsheet row upserts that failed and were skipped.",
		},
	)

	SMSSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relayo_sms_sent_total",
			Help: "Outbound SMS send attempts, by result.",
		},
		[]string{"result"},
	)

	InboundWebhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relayo_inbound_sms_webhooks_total",
			Help: "Inbound SMS webhooks received, by outcome.",
		},
		[]string{"outcome"},
	)

	RemindersSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relayo_reminders_sent_total",
			Help: "Appointment reminders delivered, by channel.",
		},
		[]string{"channel"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	Registry.MustRegister(Collectors()...)
}

// Collectors returns the relayo-specific collectors.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		SyncRunsTotal,
		SyncIntegrationsTotal,
		SyncEventsTotal,
		SheetMirrorFailuresTotal,
		SMSSentTotal,
		InboundWebhooksTotal,
		RemindersSentTotal,
	}
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
