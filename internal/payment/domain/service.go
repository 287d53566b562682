package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	// Delete removes the payment and its quotas.
	Delete(ctx context.Context, id string) error
}

// CreateRequest carries an optional Transaction that is only honoured for
// the very first payment; later payments always get the next number.
type CreateRequest struct {
	Transaction *int64
	Amount      decimal.Decimal
	Method      Method
	OrderID     string
}

// UpdateRequest never touches the transaction number.
type UpdateRequest struct {
	ID      string
	Amount  *decimal.Decimal
	Method  *Method
	OrderID *string
}

type ListRequest struct {
	OrderID string
}

type ListFilter struct {
	OrderID snowflake.ID
}

type Response struct {
	ID          string `json:"id"`
	Transaction int64  `json:"transaction"`
	Amount      string `json:"amount"`
	Method      Method `json:"method"`
	Order       string `json:"order"`
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidTransaction = errors.New("invalid_transaction")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidMethod      = errors.New("invalid_method")
	ErrInvalidOrder       = errors.New("invalid_order")
	ErrOrderAlreadyPaid   = errors.New("order_already_has_payment")
	ErrNotFound           = errors.New("not_found")
)
