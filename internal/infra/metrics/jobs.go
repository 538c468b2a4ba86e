package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(answerJobsTotal, answerLogCleanupTotal) }

var (
	answerJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "answer_jobs_total",
			Help: "Answer jobs handled by the worker pool, labeled by status.",
		},
		[]string{"status"}, // 'completed', 'failed', 'rejected'
	)

	answerLogCleanupTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "answer_log_cleanup_rows_total",
			Help: "Answer log rows removed by the retention worker.",
		},
	)
)

func IncAnswerJob(status string) {
	answerJobsTotal.WithLabelValues(norm(status)).Inc()
}

func AddAnswerLogCleanup(n int64) {
	answerLogCleanupTotal.Add(float64(n))
}
