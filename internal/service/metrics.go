package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels beyond the terminal transaction statuses.
const (
	outcomeRejected    = "REJECTED"    // failed re-validation under lock
	outcomeUnconfirmed = "UNCONFIRMED" // reconciliation gave up or was interrupted
)

var (
	transfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payflow_transfers_total",
		Help: "Transfers that reached the locked section, labeled by outcome",
	}, []string{"outcome"})

	reconcilePolls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payflow_reconcile_polls_total",
		Help: "Settlement status polls issued by the reconciliation loop",
	})
)
