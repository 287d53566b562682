package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	// Delete removes the flavour and every product brewed with it.
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	Name        string
	Description string
	PricePerLt  decimal.Decimal
}

type UpdateRequest struct {
	ID          string
	Name        *string
	Description *string
	PricePerLt  *decimal.Decimal
}

type Response struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PricePerLt  string `json:"price_per_lt"`
}

var (
	ErrInvalidID    = errors.New("invalid_id")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidPrice = errors.New("invalid_price_per_lt")
	ErrNotFound     = errors.New("not_found")
)
