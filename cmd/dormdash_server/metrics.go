//nolint:gochecknoglobals
package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invitesCreatedMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dormdash",
		Name:      "invites_created",
		Help:      "The total number of invites created",
	})

	ordersCreatedMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dormdash",
		Name:      "workorders_created",
		Help:      "The total number of work orders created",
	})
)
