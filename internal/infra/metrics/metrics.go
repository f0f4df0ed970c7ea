// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gamebridge"

// Purchases counts purchase attempts by result kind.
var Purchases = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "commerce",
	Name:      "purchases_total",
	Help:      "Purchase attempts by result (ok or error kind).",
}, []string{"result"})

// CurrencySpent sums the currency debited by successful purchases.
var CurrencySpent = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "commerce",
	Name:      "currency_spent_total",
	Help:      "Currency debited by successful purchases.",
})

// RewardClaims counts daily reward claim attempts by result kind.
var RewardClaims = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "rewards",
	Name:      "claims_total",
	Help:      "Daily reward claim attempts by result (ok or error kind).",
}, []string{"result"})

// CurrencyRewarded sums the currency credited by daily rewards.
var CurrencyRewarded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "rewards",
	Name:      "currency_rewarded_total",
	Help:      "Currency credited by daily reward claims.",
})

// TasksEnqueued counts tasks handed to the delivery queue by source.
var TasksEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "delivery",
	Name:      "tasks_enqueued_total",
	Help:      "Tasks enqueued for the game server, by source (purchase, free).",
}, []string{"source"})

// TasksAcknowledged counts tasks removed by acknowledgement.
var TasksAcknowledged = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "delivery",
	Name:      "tasks_acknowledged_total",
	Help:      "Tasks removed from the queue by game server acknowledgement.",
})

// TasksPending is the queue length seen by the last pull.
var TasksPending = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "delivery",
	Name:      "tasks_pending",
	Help:      "Tasks waiting for acknowledgement, as of the last pull.",
})

// PairingCodes is the number of live pairing codes.
var PairingCodes = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "pairing",
	Name:      "codes_active",
	Help:      "Pairing codes issued and not yet consumed or expired.",
})
