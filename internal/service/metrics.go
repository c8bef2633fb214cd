package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// cartOperationsTotal counts cart operations by op and outcome
// ("applied", "noop" or "error").
var cartOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Total number of cart operations by operation and outcome",
	},
	[]string{"op", "outcome"},
)
