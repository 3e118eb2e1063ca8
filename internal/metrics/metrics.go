package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cottonwood_http_requests_total",
			Help: "Total HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cottonwood_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPPanicsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cottonwood_http_panics_total",
			Help: "Handler panics recovered, by method",
		},
		[]string{"method"},
	)

	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cottonwood_sync_runs_total",
			Help: "Commerce sync runs by mode and result",
		},
		[]string{"mode", "result"},
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cottonwood_sync_duration_seconds",
			Help:    "Duration of commerce sync runs",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		},
	)

	SyncedMembersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cottonwood_synced_members_total",
			Help: "Members written by sync, by outcome",
		},
		[]string{"outcome"},
	)

	EmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cottonwood_emails_total",
			Help: "Outreach emails by result",
		},
		[]string{"result"},
	)

	TagChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cottonwood_tag_changes_total",
			Help: "Enrollment tag changes by action",
		},
		[]string{"action"},
	)

	BackupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cottonwood_backups_total",
			Help: "Roster snapshot uploads by result",
		},
		[]string{"result"},
	)
)
