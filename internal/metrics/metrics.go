package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	recordsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skippy",
			Name:      "records_received_total",
			Help:      "Inbound records accepted by kind (webhook, sms).",
		},
		[]string{"kind"},
	)

	tasksProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skippy",
			Name:      "tasks_processed_total",
			Help:      "Worker task outcomes by task type and result.",
		},
		[]string{"type", "result"},
	)

	retentionDeleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skippy",
			Name:      "retention_deleted_total",
			Help:      "Records removed by the retention sweep, by collection.",
		},
		[]string{"collection"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(recordsReceived, tasksProcessed, retentionDeleted)
	})
}

// IncReceived counts an accepted inbound record.
func IncReceived(kind string) {
	recordsReceived.WithLabelValues(kind).Inc()
}

// IncTask counts a finished task attempt with its outcome.
func IncTask(taskType, result string) {
	tasksProcessed.WithLabelValues(taskType, result).Inc()
}

// AddRetentionDeleted counts records removed by a sweep.
func AddRetentionDeleted(collection string, n int) {
	retentionDeleted.WithLabelValues(collection).Add(float64(n))
}
