package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/birracraft/internal/cascade"
	"github.com/smallbiznis/birracraft/internal/flavour/domain"
	"github.com/smallbiznis/birracraft/internal/observability/metrics"
	"github.com/smallbiznis/birracraft/pkg/db/option"
	"github.com/smallbiznis/birracraft/pkg/money"
	"github.com/smallbiznis/birracraft/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    repository.Repository[domain.Flavour]
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("flavour.service"),
		genID:   p.GenID,
		repo:    repository.ProvideStore[domain.Flavour](p.DB),
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if !validName(name) {
		return nil, domain.ErrInvalidName
	}
	if money.Amount.Validate(req.PricePerLt) != nil {
		return nil, domain.ErrInvalidPrice
	}

	now := time.Now().UTC()
	flavour := domain.Flavour{
		ID:          s.genID.Generate(),
		Name:        name,
		Description: req.Description,
		PricePerLt:  req.PricePerLt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, &flavour); err != nil {
		return nil, err
	}

	resp := toResponse(&flavour)
	return &resp, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Response, error) {
	items, err := s.repo.Find(ctx, nil, option.ApplyOrder("id ASC"))
	if err != nil {
		return nil, err
	}
	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(item))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	flavour, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(flavour)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	flavour, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if !validName(name) {
			return nil, domain.ErrInvalidName
		}
		flavour.Name = name
		updates["name"] = name
	}
	if req.Description != nil {
		flavour.Description = *req.Description
		updates["description"] = flavour.Description
	}
	if req.PricePerLt != nil {
		if money.Amount.Validate(*req.PricePerLt) != nil {
			return nil, domain.ErrInvalidPrice
		}
		flavour.PricePerLt = *req.PricePerLt
		updates["price_per_lt"] = flavour.PricePerLt
	}
	if len(updates) > 0 {
		flavour.UpdatedAt = time.Now().UTC()
		updates["updated_at"] = flavour.UpdatedAt
		if err := s.repo.Update(ctx, int64(flavour.ID), updates); err != nil {
			return nil, err
		}
	}

	resp := toResponse(flavour)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	flavour, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	var result cascade.Result
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result, err = cascade.DeleteFlavours(ctx, tx, flavour.ID)
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.RecordCascadeDelete(ctx, "flavour")
	s.log.Info("flavour deleted",
		zap.String("flavour_id", flavour.ID.String()),
		zap.Int64("products", result.Products),
	)
	return nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Flavour, error) {
	flavourID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || flavourID <= 0 {
		return nil, domain.ErrInvalidID
	}
	item, err := s.repo.FindOne(ctx, &domain.Flavour{ID: flavourID})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func validName(name string) bool {
	return name != "" && utf8.RuneCountInString(name) <= domain.MaxNameLength
}

func toResponse(f *domain.Flavour) domain.Response {
	return domain.Response{
		ID:          f.ID.String(),
		Name:        f.Name,
		Description: f.Description,
		PricePerLt:  money.Format(f.PricePerLt),
	}
}
