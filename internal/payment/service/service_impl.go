package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/birracraft/internal/cascade"
	"github.com/smallbiznis/birracraft/internal/observability/metrics"
	"github.com/smallbiznis/birracraft/internal/payment/domain"
	"github.com/smallbiznis/birracraft/pkg/db"
	"github.com/smallbiznis/birracraft/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("payment.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

// Create records the payment of an order. The transaction number is
// allocated inside the same database transaction as the insert, so
// concurrent creations never share a number and a failed insert gives
// its number back.
func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	if money.Amount.Validate(req.Amount) != nil {
		return nil, domain.ErrInvalidAmount
	}
	if !req.Method.Valid() {
		return nil, domain.ErrInvalidMethod
	}
	initial := domain.DefaultTransaction
	if req.Transaction != nil {
		if *req.Transaction <= 0 {
			return nil, domain.ErrInvalidTransaction
		}
		initial = *req.Transaction
	}
	orderID, err := s.resolveOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payment := domain.Payment{
		ID:        s.genID.Generate(),
		Amount:    req.Amount,
		Method:    req.Method,
		OrderID:   orderID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByOrderID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrOrderAlreadyPaid
		}

		number, err := s.repo.NextTransaction(ctx, tx, initial)
		if err != nil {
			return err
		}
		payment.Transaction = number

		if err := s.repo.Insert(ctx, tx, &payment); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrOrderAlreadyPaid
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrOrderAlreadyPaid) {
			s.metrics.RecordPaymentConflict(ctx)
		}
		return nil, err
	}

	s.metrics.RecordPaymentCreated(ctx, string(payment.Method), payment.Transaction)
	s.log.Info("payment created",
		zap.String("payment_id", payment.ID.String()),
		zap.String("order_id", payment.OrderID.String()),
		zap.Int64("transaction", payment.Transaction),
	)

	resp := toResponse(&payment)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	var filter domain.ListFilter
	if raw := strings.TrimSpace(req.OrderID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidOrder
		}
		filter.OrderID = id
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	payment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(payment)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	payment, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Amount != nil {
		if money.Amount.Validate(*req.Amount) != nil {
			return nil, domain.ErrInvalidAmount
		}
		payment.Amount = *req.Amount
	}
	if req.Method != nil {
		if !req.Method.Valid() {
			return nil, domain.ErrInvalidMethod
		}
		payment.Method = *req.Method
	}
	if req.OrderID != nil {
		orderID, err := s.resolveOrder(ctx, *req.OrderID)
		if err != nil {
			return nil, err
		}
		if orderID != payment.OrderID {
			other, err := s.repo.FindByOrderID(ctx, s.db, orderID)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, domain.ErrOrderAlreadyPaid
			}
		}
		payment.OrderID = orderID
	}

	payment.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, payment); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrOrderAlreadyPaid
		}
		return nil, err
	}

	resp := toResponse(payment)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	payment, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	var result cascade.Result
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result, err = cascade.DeletePayments(ctx, tx, payment.ID)
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.RecordCascadeDelete(ctx, "payment")
	s.log.Info("payment deleted",
		zap.String("payment_id", payment.ID.String()),
		zap.Int64("transaction", payment.Transaction),
		zap.Int64("quotas", result.Quotas),
	)
	return nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Payment, error) {
	paymentID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || paymentID <= 0 {
		return nil, domain.ErrInvalidID
	}
	payment, err := s.repo.FindByID(ctx, s.db, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, domain.ErrNotFound
	}
	return payment, nil
}

func (s *Service) resolveOrder(ctx context.Context, raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidOrder
	}
	ok, err := s.repo.OrderExists(ctx, s.db, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, domain.ErrInvalidOrder
	}
	return id, nil
}

func toResponse(p *domain.Payment) domain.Response {
	return domain.Response{
		ID:          p.ID.String(),
		Transaction: p.Transaction,
		Amount:      money.Format(p.Amount),
		Method:      p.Method,
		Order:       p.OrderID.String(),
	}
}
