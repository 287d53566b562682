package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/birracraft/internal/cascade"
	"github.com/smallbiznis/birracraft/internal/container/domain"
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
	repo    repository.Repository[domain.Container]
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("container.service"),
		genID:   p.GenID,
		repo:    repository.ProvideStore[domain.Container](p.DB),
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	if !req.Type.Valid() {
		return nil, domain.ErrInvalidType
	}
	if err := money.Liters.Validate(req.Liters); err != nil || req.Liters.IsZero() {
		return nil, domain.ErrInvalidLiters
	}

	now := time.Now().UTC()
	container := domain.Container{
		ID:        s.genID.Generate(),
		Type:      req.Type,
		Liters:    req.Liters,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, &container); err != nil {
		return nil, err
	}

	resp := toResponse(&container)
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
	container, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(container)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	container, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Type != nil {
		if !req.Type.Valid() {
			return nil, domain.ErrInvalidType
		}
		container.Type = *req.Type
		updates["type"] = container.Type
	}
	if req.Liters != nil {
		if err := money.Liters.Validate(*req.Liters); err != nil || req.Liters.IsZero() {
			return nil, domain.ErrInvalidLiters
		}
		container.Liters = *req.Liters
		updates["liters"] = container.Liters
	}
	if len(updates) > 0 {
		container.UpdatedAt = time.Now().UTC()
		updates["updated_at"] = container.UpdatedAt
		if err := s.repo.Update(ctx, int64(container.ID), updates); err != nil {
			return nil, err
		}
	}

	resp := toResponse(container)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	container, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	var result cascade.Result
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result, err = cascade.DeleteContainers(ctx, tx, container.ID)
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.RecordCascadeDelete(ctx, "container")
	s.log.Info("container deleted",
		zap.String("container_id", container.ID.String()),
		zap.Int64("products", result.Products),
	)
	return nil
}

func (s *Service) SelectLiters(ctx context.Context, id string) (*domain.LitersResponse, error) {
	container, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	liters, ok := domain.PermittedLiters(container.Type)
	if !ok {
		return nil, domain.ErrInvalidType
	}
	return &domain.LitersResponse{Type: container.Type, Liters: liters}, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Container, error) {
	containerID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || containerID <= 0 {
		return nil, domain.ErrInvalidID
	}
	item, err := s.repo.FindOne(ctx, &domain.Container{ID: containerID})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func toResponse(c *domain.Container) domain.Response {
	return domain.Response{
		ID:     c.ID.String(),
		Type:   c.Type,
		Liters: money.Format(c.Liters),
	}
}
