package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/birracraft/internal/cascade"
	"github.com/smallbiznis/birracraft/internal/observability/metrics"
	"github.com/smallbiznis/birracraft/internal/product/domain"
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
	repo    domain.Repository
	genID   *snowflake.Node
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("product.service"),
		repo:    p.Repo,
		genID:   p.GenID,
		metrics: p.Metrics,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListFilter{State: domain.State(strings.TrimSpace(string(req.State)))}
	if filter.State != "" && !filter.State.Valid() {
		return nil, domain.ErrInvalidState
	}
	if raw := strings.TrimSpace(req.ContainerID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidContainer
		}
		filter.ContainerID = id
	}
	if raw := strings.TrimSpace(req.FlavourID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidFlavour
		}
		filter.FlavourID = id
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

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	code := strings.TrimSpace(req.Code)
	if !validCode(code) {
		return nil, domain.ErrInvalidCode
	}
	if !req.State.Valid() {
		return nil, domain.ErrInvalidState
	}
	if money.Amount.Validate(req.Price) != nil {
		return nil, domain.ErrInvalidPrice
	}
	containerID, err := s.resolveContainer(ctx, req.ContainerID)
	if err != nil {
		return nil, err
	}
	flavourID, err := s.resolveFlavour(ctx, req.FlavourID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	arrived := req.ArrivedDate
	if arrived.IsZero() {
		arrived = date.FromTime(now)
	}

	product := domain.Product{
		ID:          s.genID.Generate(),
		Code:        code,
		ContainerID: containerID,
		FlavourID:   flavourID,
		ArrivedDate: arrived,
		Price:       req.Price,
		State:       req.State,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, s.db, &product); err != nil {
		return nil, err
	}

	resp := toResponse(&product)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	item, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		code := strings.TrimSpace(*req.Code)
		if !validCode(code) {
			return nil, domain.ErrInvalidCode
		}
		item.Code = code
	}
	if req.ContainerID != nil {
		if item.ContainerID, err = s.resolveContainer(ctx, *req.ContainerID); err != nil {
			return nil, err
		}
	}
	if req.FlavourID != nil {
		if item.FlavourID, err = s.resolveFlavour(ctx, *req.FlavourID); err != nil {
			return nil, err
		}
	}
	if req.ArrivedDate != nil {
		if req.ArrivedDate.IsZero() {
			return nil, domain.ErrInvalidArrivedDate
		}
		item.ArrivedDate = *req.ArrivedDate
	}
	if req.Price != nil {
		if money.Amount.Validate(*req.Price) != nil {
			return nil, domain.ErrInvalidPrice
		}
		item.Price = *req.Price
	}
	if req.State != nil {
		if !req.State.Valid() {
			return nil, domain.ErrInvalidState
		}
		item.State = *req.State
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	item, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	var result cascade.Result
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result, err = cascade.DeleteProducts(ctx, tx, item.ID)
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.RecordCascadeDelete(ctx, "product")
	s.log.Info("product deleted",
		zap.String("product_id", item.ID.String()),
		zap.Int64("order_links", result.OrderProducts),
	)
	return nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Product, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || productID <= 0 {
		return nil, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) resolveContainer(ctx context.Context, raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidContainer
	}
	ok, err := s.repo.ContainerExists(ctx, s.db, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, domain.ErrInvalidContainer
	}
	return id, nil
}

func (s *Service) resolveFlavour(ctx context.Context, raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidFlavour
	}
	ok, err := s.repo.FlavourExists(ctx, s.db, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, domain.ErrInvalidFlavour
	}
	return id, nil
}

func validCode(code string) bool {
	return code != "" && utf8.RuneCountInString(code) <= domain.MaxCodeLength
}

func toResponse(p *domain.Product) domain.Response {
	return domain.Response{
		ID:          p.ID.String(),
		Code:        p.Code,
		Container:   p.ContainerID.String(),
		Flavour:     p.FlavourID.String(),
		ArrivedDate: p.ArrivedDate,
		Price:       money.Format(p.Price),
		State:       p.State,
	}
}
