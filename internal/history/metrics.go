package history

import "github.com/prometheus/client_golang/prometheus"

var (
	entriesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "forge3d",
		Subsystem: "history",
		Name:      "entries",
		Help:      "Number of entries in the history store",
	})

	fileDeletesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "forge3d",
			Subsystem: "history",
			Name:      "file_deletes_total",
			Help:      "Backing file deletions by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(entriesGauge, fileDeletesTotal)
}
