package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Реле
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "club3_chat_connections_active",
			Help: "Live relay connections",
		},
	)

	RoomJoins = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "club3_chat_room_joins_total",
			Help: "Total room joins",
		},
	)

	RoomLeaves = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "club3_chat_room_leaves_total",
			Help: "Total room leaves, including disconnect cleanup",
		},
	)

	Broadcasts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "club3_chat_broadcasts_total",
			Help: "Total room broadcasts",
		},
	)

	Deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "club3_chat_deliveries_total",
			Help: "Per-member deliveries by outcome",
		},
		[]string{"outcome"}, // "queued" or "dropped"
	)

	RejectedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "club3_chat_rejected_events_total",
			Help: "Inbound events rejected as room operation failures",
		},
		[]string{"event"},
	)

	// Лог переписки
	LogStoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "club3_chat_logstore_latency_seconds",
			Help:    "Conversation log operation latency",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 5},
		},
		[]string{"backend", "op"},
	)

	LogStoreFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "club3_chat_logstore_failures_total",
			Help: "Conversation log operations that failed",
		},
		[]string{"backend", "op"},
	)
)
