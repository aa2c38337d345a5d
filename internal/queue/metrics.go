package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskcamp_mail_jobs_enqueued_total",
			Help: "Mail jobs handed to the broker by type and outcome",
		},
		[]string{"type", "outcome"},
	)
	jobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskcamp_mail_jobs_processed_total",
			Help: "Mail jobs processed by the worker by type and outcome",
		},
		[]string{"type", "outcome"},
	)
)
