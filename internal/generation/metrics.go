package generation

import "github.com/prometheus/client_golang/prometheus"

var (
	jobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "forge3d",
			Name:      "jobs_total",
			Help:      "Generation jobs by outcome",
		},
		[]string{"outcome"},
	)

	pollIterationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "forge3d",
		Name:      "poll_iterations_total",
		Help:      "Status requests issued by poll loops",
	})

	jobDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "forge3d",
		Name:      "job_duration_seconds",
		Help:      "Time from submission to a terminal state",
		Buckets:   []float64{5, 15, 30, 60, 120, 300, 600},
	})

	eventsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "forge3d",
		Name:      "events_dropped_total",
		Help:      "Events not delivered to a slow subscriber",
	})
)

// Job outcomes.
const (
	outcomeCompleted = "completed"
	outcomeFailed    = "failed"
	outcomeCanceled  = "canceled"
	outcomeRejected  = "rejected"
)

func init() {
	prometheus.MustRegister(jobsTotal, pollIterationsTotal, jobDuration, eventsDroppedTotal)
}
