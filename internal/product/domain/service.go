package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/birracraft/pkg/date"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	// Delete removes the product and unlinks it from every order.
	Delete(ctx context.Context, id string) error
}

type ListRequest struct {
	State       State
	ContainerID string
	FlavourID   string
}

type ListFilter struct {
	State       State
	ContainerID snowflake.ID
	FlavourID   snowflake.ID
}

type CreateRequest struct {
	Code        string
	ContainerID string
	FlavourID   string
	ArrivedDate date.Date
	Price       decimal.Decimal
	State       State
}

type UpdateRequest struct {
	ID          string
	Code        *string
	ContainerID *string
	FlavourID   *string
	ArrivedDate *date.Date
	Price       *decimal.Decimal
	State       *State
}

type Response struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Container   string    `json:"container"`
	Flavour     string    `json:"flavour"`
	ArrivedDate date.Date `json:"arrived_date"`
	Price       string    `json:"price"`
	State       State     `json:"state"`
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidCode        = errors.New("invalid_code")
	ErrInvalidContainer   = errors.New("invalid_container")
	ErrInvalidFlavour     = errors.New("invalid_flavour")
	ErrInvalidArrivedDate = errors.New("invalid_arrived_date")
	ErrInvalidPrice       = errors.New("invalid_price")
	ErrInvalidState       = errors.New("invalid_state")
	ErrNotFound           = errors.New("not_found")
)
