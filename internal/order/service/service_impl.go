package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/birracraft/internal/cascade"
	"github.com/smallbiznis/birracraft/internal/observability/metrics"
	"github.com/smallbiznis/birracraft/internal/order/domain"
	"github.com/smallbiznis/birracraft/pkg/date"
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
		log:     p.Log.Named("order.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	if money.Amount.Validate(req.Price) != nil {
		return nil, domain.ErrInvalidPrice
	}
	if money.Amount.Validate(req.DeliveryCost) != nil {
		return nil, domain.ErrInvalidDeliveryCost
	}
	total := req.Price.Add(req.DeliveryCost)
	if req.TotalAmount != nil {
		total = *req.TotalAmount
	}
	if money.Amount.Validate(total) != nil {
		return nil, domain.ErrInvalidTotalAmount
	}

	state := req.State
	if state == "" {
		state = domain.StatePending
	}
	if !state.Valid() {
		return nil, domain.ErrInvalidState
	}

	customerID, err := s.resolveCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	productIDs, err := s.resolveProducts(ctx, req.ProductIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	orderDate := req.Date
	if orderDate.IsZero() {
		orderDate = date.FromTime(now)
	}

	order := domain.Order{
		ID:           s.genID.Generate(),
		Date:         orderDate,
		Price:        req.Price,
		DeliveryCost: req.DeliveryCost,
		TotalAmount:  total,
		CustomerID:   customerID,
		State:        state,
		Comment:      req.Comment,
		CreatedAt:    now,
		UpdatedAt:    now,
		ProductIDs:   productIDs,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.Insert(ctx, tx, &order)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordOrderCreated(ctx, string(order.State))
	resp := toResponse(&order)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListFilter{
		State:    req.State,
		DateFrom: req.DateFrom,
	}
	if filter.State != "" && !filter.State.Valid() {
		return nil, domain.ErrInvalidState
	}
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidCustomer
		}
		filter.CustomerID = id
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
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(order)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	order, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Date != nil {
		if req.Date.IsZero() {
			return nil, domain.ErrInvalidDate
		}
		order.Date = *req.Date
	}
	if req.Price != nil {
		if money.Amount.Validate(*req.Price) != nil {
			return nil, domain.ErrInvalidPrice
		}
		order.Price = *req.Price
	}
	if req.DeliveryCost != nil {
		if money.Amount.Validate(*req.DeliveryCost) != nil {
			return nil, domain.ErrInvalidDeliveryCost
		}
		order.DeliveryCost = *req.DeliveryCost
	}
	if req.TotalAmount != nil {
		if money.Amount.Validate(*req.TotalAmount) != nil {
			return nil, domain.ErrInvalidTotalAmount
		}
		order.TotalAmount = *req.TotalAmount
	}
	if req.CustomerID != nil {
		if order.CustomerID, err = s.resolveCustomer(ctx, *req.CustomerID); err != nil {
			return nil, err
		}
	}
	if req.State != nil {
		if !req.State.Valid() {
			return nil, domain.ErrInvalidState
		}
		if *req.State != order.State {
			s.log.Debug("order state changed",
				zap.String("order_id", order.ID.String()),
				zap.String("from", string(order.State)),
				zap.String("to", string(*req.State)),
			)
		}
		order.State = *req.State
	}
	if req.Comment != nil {
		order.Comment = *req.Comment
	}
	var productIDs []snowflake.ID
	if req.ProductIDs != nil {
		if productIDs, err = s.resolveProducts(ctx, *req.ProductIDs); err != nil {
			return nil, err
		}
		order.ProductIDs = productIDs
	}

	order.UpdatedAt = time.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, order); err != nil {
			return err
		}
		if req.ProductIDs == nil {
			return nil
		}
		return s.repo.ReplaceProducts(ctx, tx, order.ID, productIDs)
	})
	if err != nil {
		return nil, err
	}

	resp := toResponse(order)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	order, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	var result cascade.Result
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result, err = cascade.DeleteOrders(ctx, tx, order.ID)
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.RecordCascadeDelete(ctx, "order")
	s.log.Info("order deleted",
		zap.String("order_id", order.ID.String()),
		zap.Int64("payments", result.Payments),
		zap.Int64("quotas", result.Quotas),
	)
	return nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Order, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || orderID <= 0 {
		return nil, domain.ErrInvalidID
	}
	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func (s *Service) resolveCustomer(ctx context.Context, raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidCustomer
	}
	ok, err := s.repo.CustomerExists(ctx, s.db, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, domain.ErrInvalidCustomer
	}
	return id, nil
}

// resolveProducts parses and de-duplicates product ids and checks that all exist.
func (s *Service) resolveProducts(ctx context.Context, raw []string) ([]snowflake.ID, error) {
	seen := make(map[snowflake.ID]struct{}, len(raw))
	ids := make([]snowflake.ID, 0, len(raw))
	for _, value := range raw {
		id, err := snowflake.ParseString(strings.TrimSpace(value))
		if err != nil || id <= 0 {
			return nil, domain.ErrInvalidProducts
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return ids, nil
	}

	count, err := s.repo.CountProducts(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	if count != int64(len(ids)) {
		return nil, domain.ErrInvalidProducts
	}
	return ids, nil
}

func toResponse(o *domain.Order) domain.Response {
	products := make([]string, 0, len(o.ProductIDs))
	for _, id := range o.ProductIDs {
		products = append(products, id.String())
	}
	return domain.Response{
		ID:           o.ID.String(),
		Date:         o.Date,
		Products:     products,
		Price:        money.Format(o.Price),
		DeliveryCost: money.Format(o.DeliveryCost),
		TotalAmount:  money.Format(o.TotalAmount),
		Customer:     o.CustomerID.String(),
		State:        o.State,
		Comment:      o.Comment,
	}
}

