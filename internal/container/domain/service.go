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
	// Delete removes the container and every product stored in it.
	Delete(ctx context.Context, id string) error
	SelectLiters(ctx context.Context, id string) (*LitersResponse, error)
}

type CreateRequest struct {
	Type   Type
	Liters decimal.Decimal
}

type UpdateRequest struct {
	ID     string
	Type   *Type
	Liters *decimal.Decimal
}

type Response struct {
	ID     string `json:"id"`
	Type   Type   `json:"type"`
	Liters string `json:"liters"`
}

type LitersResponse struct {
	Type   Type              `json:"type"`
	Liters []decimal.Decimal `json:"liters"`
}

var (
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidType   = errors.New("invalid_type")
	ErrInvalidLiters = errors.New("invalid_liters")
	ErrNotFound      = errors.New("not_found")
)
