package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/birracraft/internal/clock"
	"github.com/smallbiznis/birracraft/internal/config"
	"github.com/smallbiznis/birracraft/internal/observability/metrics"
	"github.com/smallbiznis/birracraft/internal/providers/email"
	"github.com/smallbiznis/birracraft/internal/providers/pdf"
	"github.com/smallbiznis/birracraft/internal/ratelimit"
	"github.com/smallbiznis/birracraft/internal/report/domain"
	"github.com/smallbiznis/birracraft/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	jobName = "sales_report"

	jobTimeout   = 2 * time.Minute
	errorBackoff = time.Second
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Queue    domain.Queue
	Repo     domain.Repository
	PDF      pdf.Provider
	Email    email.Provider
	Settings *config.ReportConfigHolder `optional:"true"`
	Locker   *ratelimit.Locker          `optional:"true"`
	Metrics  *metrics.WorkerMetrics     `optional:"true"`
	Clock    clock.Clock                `optional:"true"`
}

// Worker turns queued report requests into PDFs mailed to the requester.
type Worker struct {
	log      *zap.Logger
	queue    domain.Queue
	repo     domain.Repository
	pdf      pdf.Provider
	email    email.Provider
	settings *config.ReportConfigHolder
	locker   *ratelimit.Locker
	metrics  *metrics.WorkerMetrics
	clock    clock.Clock
}

func New(p Params) *Worker {
	settings := p.Settings
	if settings == nil {
		settings = config.NewStaticReportConfigHolder(config.DefaultReportConfig())
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Worker{
		log:      p.Log.Named("report.worker"),
		queue:    p.Queue,
		repo:     p.Repo,
		pdf:      p.PDF,
		email:    p.Email,
		settings: settings,
		locker:   p.Locker,
		metrics:  p.Metrics,
		clock:    clk,
	}
}

// Run consumes jobs until ctx is cancelled or the queue is closed.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, domain.ErrQueueClosed) {
				return
			}
			w.log.Error("failed to dequeue report job", zap.Error(err))
			w.metrics.IncJobError(jobName, err)
			if errors.Is(err, metrics.ErrDecode) {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(errorBackoff):
			}
			continue
		}
		if job == nil {
			continue
		}

		jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
		if err := w.Handle(jobCtx, *job); err != nil {
			w.log.Error("report job failed", zap.String("job_id", job.ID), zap.Error(err))
		}
		cancel()
	}
}

// Handle processes one job. A job already held by another worker is skipped.
func (w *Worker) Handle(ctx context.Context, job domain.Job) (err error) {
	start := time.Now()
	w.metrics.IncJobRun(jobName)
	defer func() {
		w.metrics.ObserveJobDuration(jobName, time.Since(start))
		if err != nil {
			w.metrics.IncJobError(jobName, err)
		}
	}()

	var claim *ratelimit.Claim
	if w.locker != nil {
		var acquired bool
		claim, acquired, err = w.locker.ClaimReportJob(ctx, job.ID)
		if err != nil {
			w.log.Warn("report lock unavailable, processing anyway", zap.String("job_id", job.ID), zap.Error(err))
			err = nil
		} else if !acquired {
			w.log.Info("report job already taken", zap.String("job_id", job.ID))
			w.metrics.IncJobSkipped(jobName)
			return nil
		}
	}
	defer func() {
		// Keep the lock after success so redelivered copies are skipped.
		if err != nil && claim != nil {
			_ = w.locker.Release(context.Background(), claim)
		}
	}()

	settings := w.settings.Get()
	rows, err := w.repo.OrdersSince(ctx, job.Request.DateFrom, settings.MaxRows+1)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	truncated := len(rows) > settings.MaxRows
	if truncated {
		rows = rows[:settings.MaxRows]
	}

	report := BuildSalesReport(settings, job.Request, rows, w.clock.Now())
	report.Truncated = truncated

	doc, err := w.pdf.RenderSalesReport(ctx, report)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	filename := Filename(job.Request)
	err = w.email.SendTemplate(ctx, []string{job.Request.Email}, email.TemplateSalesReport, map[string]any{
		"username":  job.Request.Username,
		"date_from": job.Request.DateFrom.String(),
		"orders":    len(rows),
	}, email.Attachment{
		Filename:    filename,
		ContentType: "application/pdf",
		Data:        doc,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", metrics.ErrDelivery, err)
	}

	w.log.Info("report delivered",
		zap.String("job_id", job.ID),
		zap.String("file", filename),
		zap.Int("orders", len(rows)),
		zap.Bool("truncated", truncated),
	)
	return nil
}

func Filename(req domain.Request) string {
	return slug.Make(fmt.Sprintf("sales report %s %s", req.Username, req.DateFrom.String())) + ".pdf"
}

// BuildSalesReport formats rows and sums the totals.
func BuildSalesReport(settings config.ReportConfig, req domain.Request, rows []domain.Row, now time.Time) pdf.SalesReport {
	report := pdf.SalesReport{
		Title:          settings.Title,
		CompanyName:    settings.CompanyName,
		CurrencySymbol: settings.CurrencySymbol,
		RequestedBy:    req.Username,
		DateFrom:       req.DateFrom.String(),
		GeneratedAt:    now.UTC().Format("2006-01-02 15:04 MST"),
		Rows:           make([]pdf.SalesRow, 0, len(rows)),
	}

	var orders, paid, quotas decimal.Decimal
	for _, r := range rows {
		line := pdf.SalesRow{
			Date:     r.OrderDate.String(),
			Customer: r.CustomerName,
			State:    r.State,
			Total:    money.Format(r.TotalAmount),
			Quotas:   int(r.QuotaCount),
		}
		orders = orders.Add(r.TotalAmount)
		if r.Txn != nil {
			line.Transaction = strconv.FormatInt(*r.Txn, 10)
		}
		if r.Method != nil {
			line.Method = *r.Method
		}
		if r.Amount.Valid {
			line.Paid = money.Format(r.Amount.Decimal)
			paid = paid.Add(r.Amount.Decimal)
		}
		if r.QuotaTotal.Valid {
			quotas = quotas.Add(r.QuotaTotal.Decimal)
		}
		report.Rows = append(report.Rows, line)
	}

	report.OrdersTotal = money.Format(orders)
	report.PaidTotal = money.Format(paid)
	report.QuotaTotal = money.Format(quotas)
	return report
}
