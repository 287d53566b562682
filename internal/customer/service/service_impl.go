package service

import (
	"context"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/birracraft/internal/cascade"
	"github.com/smallbiznis/birracraft/internal/customer/domain"
	"github.com/smallbiznis/birracraft/internal/observability/metrics"
	"github.com/smallbiznis/birracraft/pkg/db/option"
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
	repo    domain.Repository
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("customer.service"),
		genID:   p.GenID,
		repo:    repository.ProvideStore[domain.Customer](p.DB),
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	now := time.Now().UTC()
	customer := domain.Customer{
		ID:        s.genID.Generate(),
		Name:      strings.TrimSpace(req.Name),
		Address:   strings.TrimSpace(req.Address),
		Email:     strings.TrimSpace(req.Email),
		Cellphone: strings.TrimSpace(req.Cellphone),
		Type:      req.Type,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validate(customer); err != nil {
		return domain.Customer{}, err
	}

	if err := s.repo.Create(ctx, &customer); err != nil {
		return domain.Customer{}, err
	}
	return customer, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Customer, error) {
	items, err := s.repo.Find(ctx, nil, option.ApplyOrder("id ASC"))
	if err != nil {
		return nil, err
	}
	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		customers = append(customers, *item)
	}
	return customers, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	customerID, err := parseID(id)
	if err != nil {
		return domain.Customer{}, err
	}
	item, err := s.repo.FindOne(ctx, &domain.Customer{ID: customerID})
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	current, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return domain.Customer{}, err
	}

	next := current
	if req.Name != nil {
		next.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		next.Address = strings.TrimSpace(*req.Address)
	}
	if req.Email != nil {
		next.Email = strings.TrimSpace(*req.Email)
	}
	if req.Cellphone != nil {
		next.Cellphone = strings.TrimSpace(*req.Cellphone)
	}
	if req.Type != nil {
		next.Type = *req.Type
	}
	if err := validate(next); err != nil {
		return domain.Customer{}, err
	}
	next.UpdatedAt = time.Now().UTC()

	updates := map[string]any{
		"name":       next.Name,
		"address":    next.Address,
		"email":      next.Email,
		"cellphone":  next.Cellphone,
		"type":       next.Type,
		"updated_at": next.UpdatedAt,
	}
	if err := s.repo.Update(ctx, int64(current.ID), updates); err != nil {
		return domain.Customer{}, err
	}
	return next, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	customer, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var result cascade.Result
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result, err = cascade.DeleteCustomers(ctx, tx, customer.ID)
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.RecordCascadeDelete(ctx, "customer")
	s.log.Info("customer deleted",
		zap.String("customer_id", customer.ID.String()),
		zap.Int64("orders", result.Orders),
		zap.Int64("payments", result.Payments),
		zap.Int64("quotas", result.Quotas),
	)
	return nil
}

func validate(c domain.Customer) error {
	if c.Name == "" || utf8.RuneCountInString(c.Name) > domain.MaxNameLength {
		return domain.ErrInvalidName
	}
	if c.Address == "" || utf8.RuneCountInString(c.Address) > domain.MaxAddressLength {
		return domain.ErrInvalidAddress
	}
	if !validEmail(c.Email) {
		return domain.ErrInvalidEmail
	}
	if c.Cellphone == "" || utf8.RuneCountInString(c.Cellphone) > domain.MaxCellphoneLength {
		return domain.ErrInvalidCellphone
	}
	if !c.Type.Valid() {
		return domain.ErrInvalidType
	}
	return nil
}

func validEmail(value string) bool {
	if value == "" || !strings.Contains(value, "@") {
		return false
	}
	addr, err := mail.ParseAddress(value)
	return err == nil && addr.Address == value
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
