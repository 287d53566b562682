package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/birracraft/internal/quota/domain"
	"github.com/smallbiznis/birracraft/pkg/date"
	"github.com/smallbiznis/birracraft/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("quota.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	if req.CurrentQuota < 1 {
		return nil, domain.ErrInvalidCurrentQuota
	}
	if req.TotalQuota < 1 {
		return nil, domain.ErrInvalidTotalQuota
	}
	if money.Amount.Validate(req.Value) != nil {
		return nil, domain.ErrInvalidValue
	}
	paymentID, err := s.resolvePayment(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	due := req.Date
	if due.IsZero() {
		due = date.FromTime(now)
	}

	quota := domain.Quota{
		ID:           s.genID.Generate(),
		CurrentQuota: req.CurrentQuota,
		TotalQuota:   req.TotalQuota,
		Value:        req.Value,
		Date:         due,
		PaymentID:    paymentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if quota.CurrentQuota > quota.TotalQuota {
		s.log.Warn("quota position beyond schedule length",
			zap.String("payment_id", paymentID.String()),
			zap.Int("current_quota", quota.CurrentQuota),
			zap.Int("total_quota", quota.TotalQuota),
		)
	}
	if err := s.repo.Insert(ctx, s.db, &quota); err != nil {
		return nil, err
	}

	resp := toResponse(&quota)
	return &resp, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Response, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return toResponses(items), nil
}

func (s *Service) ListByPayment(ctx context.Context, paymentID string) ([]domain.Response, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(paymentID))
	if err != nil || id <= 0 {
		return nil, domain.ErrInvalidPayment
	}
	items, err := s.repo.ListByPayment(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return toResponses(items), nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	quota, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(quota)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	quota, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.CurrentQuota != nil {
		if *req.CurrentQuota < 1 {
			return nil, domain.ErrInvalidCurrentQuota
		}
		quota.CurrentQuota = *req.CurrentQuota
	}
	if req.TotalQuota != nil {
		if *req.TotalQuota < 1 {
			return nil, domain.ErrInvalidTotalQuota
		}
		quota.TotalQuota = *req.TotalQuota
	}
	if req.Value != nil {
		if money.Amount.Validate(*req.Value) != nil {
			return nil, domain.ErrInvalidValue
		}
		quota.Value = *req.Value
	}
	if req.Date != nil {
		if req.Date.IsZero() {
			return nil, domain.ErrInvalidDate
		}
		quota.Date = *req.Date
	}
	if req.PaymentID != nil {
		if quota.PaymentID, err = s.resolvePayment(ctx, *req.PaymentID); err != nil {
			return nil, err
		}
	}

	quota.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, quota); err != nil {
		return nil, err
	}

	resp := toResponse(quota)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	quota, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, quota.ID)
}

func (s *Service) find(ctx context.Context, id string) (*domain.Quota, error) {
	quotaID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || quotaID <= 0 {
		return nil, domain.ErrInvalidID
	}
	quota, err := s.repo.FindByID(ctx, s.db, quotaID)
	if err != nil {
		return nil, err
	}
	if quota == nil {
		return nil, domain.ErrNotFound
	}
	return quota, nil
}

func (s *Service) resolvePayment(ctx context.Context, raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidPayment
	}
	ok, err := s.repo.PaymentExists(ctx, s.db, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, domain.ErrInvalidPayment
	}
	return id, nil
}

func toResponses(items []domain.Quota) []domain.Response {
	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp
}

func toResponse(q *domain.Quota) domain.Response {
	return domain.Response{
		ID:           q.ID.String(),
		CurrentQuota: q.CurrentQuota,
		TotalQuota:   q.TotalQuota,
		Value:        money.Format(q.Value),
		Date:         q.Date,
		Payment:      q.PaymentID.String(),
	}
}
