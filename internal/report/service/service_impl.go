package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/birracraft/internal/clock"
	"github.com/smallbiznis/birracraft/internal/observability/metrics"
	"github.com/smallbiznis/birracraft/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Queue   domain.Queue
	Clock   clock.Clock      `optional:"true"`
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	queue   domain.Queue
	clock   clock.Clock
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		log:     p.Log.Named("report.service"),
		queue:   p.Queue,
		clock:   clk,
		metrics: p.Metrics,
	}
}

func (s *Service) Request(ctx context.Context, req domain.Request) (string, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return "", domain.ErrInvalidEmail
	}
	if req.Username == "" {
		return "", domain.ErrInvalidUsername
	}
	if req.DateFrom.IsZero() {
		return "", domain.ErrInvalidDateFrom
	}

	now := s.clock.Now()
	job := domain.Job{
		ID:         ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Request:    req,
		EnqueuedAt: now,
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.log.Error("failed to enqueue report", zap.String("job_id", job.ID), zap.Error(err))
		s.metrics.RecordReportEnqueued(ctx, s.queue.Backend(), "error")
		return "", err
	}

	s.log.Info("report enqueued",
		zap.String("job_id", job.ID),
		zap.String("username", req.Username),
		zap.String("date_from", req.DateFrom.String()),
	)
	s.metrics.RecordReportEnqueued(ctx, s.queue.Backend(), "ok")
	return job.ID, nil
}
