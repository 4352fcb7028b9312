package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutcomeSkipped marks a job run that another worker instance held the lock for.
const OutcomeSkipped = "skipped"

// JobMetrics tracks scheduled job runs of the cron worker.
type JobMetrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	lastRun  *prometheus.GaugeVec
}

func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}
	m := &JobMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cron_job_runs_total",
			Help: "Scheduled job runs by job and outcome.",
		}, []string{"job", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cron_job_duration_seconds",
			Help:    "Wall time of scheduled job runs that held the lock.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"job"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cron_job_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run per job.",
		}, []string{"job"}),
	}
	reg.MustRegister(m.runs, m.duration, m.lastRun)
	return m
}

// ObserveRun records one finished run. Skipped runs carry no duration.
func (m *JobMetrics) ObserveRun(job, outcome string, took time.Duration, finished time.Time) {
	if m == nil || m.runs == nil {
		return
	}
	if job == "" {
		job = "unknown"
	}
	m.runs.WithLabelValues(job, outcome).Inc()
	if outcome == OutcomeSkipped {
		return
	}
	m.duration.WithLabelValues(job).Observe(took.Seconds())
	if outcome == OutcomeSuccess {
		m.lastRun.WithLabelValues(job).Set(float64(finished.Unix()))
	}
}
