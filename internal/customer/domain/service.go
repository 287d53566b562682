package domain

import (
	"context"
	"errors"
)

const (
	MaxNameLength      = 30
	MaxAddressLength   = 120
	MaxCellphoneLength = 12
)

type CreateCustomerRequest struct {
	Name      string
	Address   string
	Email     string
	Cellphone string
	Type      Type
}

// UpdateCustomerRequest changes only the non-nil fields.
type UpdateCustomerRequest struct {
	ID        string
	Name      *string
	Address   *string
	Email     *string
	Cellphone *string
	Type      *Type
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	List(context.Context) ([]Customer, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	Update(context.Context, UpdateCustomerRequest) (Customer, error)
	// Delete removes the customer together with its orders, their payments and quotas.
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidAddress   = errors.New("invalid_address")
	ErrInvalidEmail     = errors.New("invalid_email")
	ErrInvalidCellphone = errors.New("invalid_cellphone")
	ErrInvalidType      = errors.New("invalid_type")
	ErrNotFound         = errors.New("not_found")
)
