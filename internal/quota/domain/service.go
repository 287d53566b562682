package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/birracraft/pkg/date"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	// ListByPayment returns the quotas of one payment ordered by position.
	ListByPayment(ctx context.Context, paymentID string) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	CurrentQuota int
	TotalQuota   int
	Value        decimal.Decimal
	Date         date.Date
	PaymentID    string
}

type UpdateRequest struct {
	ID           string
	CurrentQuota *int
	TotalQuota   *int
	Value        *decimal.Decimal
	Date         *date.Date
	PaymentID    *string
}

type Response struct {
	ID           string    `json:"id"`
	CurrentQuota int       `json:"current_quota"`
	TotalQuota   int       `json:"total_quota"`
	Value        string    `json:"value"`
	Date         date.Date `json:"date"`
	Payment      string    `json:"payment"`
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidCurrentQuota = errors.New("invalid_current_quota")
	ErrInvalidTotalQuota   = errors.New("invalid_total_quota")
	ErrInvalidValue        = errors.New("invalid_value")
	ErrInvalidDate         = errors.New("invalid_date")
	ErrInvalidPayment      = errors.New("invalid_payment")
	ErrNotFound            = errors.New("not_found")
)
