package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	JobReasonDeadlineExceeded = "deadline_exceeded"
	JobReasonDBLockTimeout    = "db_lock_timeout"
	JobReasonDuplicate        = "duplicate"
	JobReasonDecode           = "decode"
	JobReasonDelivery         = "delivery"
	JobReasonUnknown          = "unknown"
)

// ErrDecode and ErrDelivery tag worker failures for classification.
var (
	ErrDecode   = errors.New("job_decode_failed")
	ErrDelivery = errors.New("job_delivery_failed")
)

// WorkerMetrics captures report worker health.
type WorkerMetrics struct {
	jobRuns     *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	jobErrors   *prometheus.CounterVec
	jobSkipped  *prometheus.CounterVec
}

func NewWorkerMetrics(reg *prometheus.Registry, cfg Config) *WorkerMetrics {
	constLabels := serviceLabels(cfg)
	m := &WorkerMetrics{
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "birracraft_worker_job_runs_total",
			Help:        "Worker job runs by job name.",
			ConstLabels: constLabels,
		}, []string{"job"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "birracraft_worker_job_duration_seconds",
			Help:        "Worker job latency by job name.",
			ConstLabels: constLabels,
			Buckets:     []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"job"}),
		jobErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "birracraft_worker_job_errors_total",
			Help:        "Worker job failures by job name and reason.",
			ConstLabels: constLabels,
		}, []string{"job", "reason"}),
		jobSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "birracraft_worker_job_skipped_total",
			Help:        "Jobs skipped because another worker holds them.",
			ConstLabels: constLabels,
		}, []string{"job"}),
	}
	reg.MustRegister(m.jobRuns, m.jobDuration, m.jobErrors, m.jobSkipped)
	return m
}

func (m *WorkerMetrics) IncJobRun(job string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

func (m *WorkerMetrics) ObserveJobDuration(job string, d time.Duration) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func (m *WorkerMetrics) IncJobError(job string, err error) {
	if m == nil || err == nil {
		return
	}
	m.jobErrors.WithLabelValues(job, ClassifyJobReason(err)).Inc()
}

func (m *WorkerMetrics) IncJobSkipped(job string) {
	if m == nil {
		return
	}
	m.jobSkipped.WithLabelValues(job).Inc()
}

// ClassifyJobReason maps a worker error to a bounded reason label.
func ClassifyJobReason(err error) string {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return JobReasonDeadlineExceeded
	case errors.Is(err, ErrDecode):
		return JobReasonDecode
	case errors.Is(err, ErrDelivery):
		return JobReasonDelivery
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return JobReasonDuplicate
	case errors.As(err, &pgErr) && pgErr.Code == "55P03":
		return JobReasonDBLockTimeout
	default:
		return JobReasonUnknown
	}
}
