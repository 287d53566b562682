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
	// Delete removes the order, its product links, its payment and the payment's quotas.
	Delete(ctx context.Context, id string) error
}

type ListRequest struct {
	CustomerID string
	State      State
	DateFrom   date.Date
}

type ListFilter struct {
	CustomerID snowflake.ID
	State      State
	DateFrom   date.Date
}

// CreateRequest describes a new order. TotalAmount defaults to
// Price + DeliveryCost when nil; a supplied value is stored as given.
type CreateRequest struct {
	Date         date.Date
	ProductIDs   []string
	Price        decimal.Decimal
	DeliveryCost decimal.Decimal
	TotalAmount  *decimal.Decimal
	CustomerID   string
	State        State
	Comment      string
}

type UpdateRequest struct {
	ID           string
	Date         *date.Date
	ProductIDs   *[]string
	Price        *decimal.Decimal
	DeliveryCost *decimal.Decimal
	TotalAmount  *decimal.Decimal
	CustomerID   *string
	State        *State
	Comment      *string
}

type Response struct {
	ID           string    `json:"id"`
	Date         date.Date `json:"date"`
	Products     []string  `json:"products"`
	Price        string    `json:"price"`
	DeliveryCost string    `json:"delivery_cost"`
	TotalAmount  string    `json:"total_amount"`
	Customer     string    `json:"customer"`
	State        State     `json:"state"`
	Comment      string    `json:"comment"`
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidDate         = errors.New("invalid_date")
	ErrInvalidProducts     = errors.New("invalid_products")
	ErrInvalidPrice        = errors.New("invalid_price")
	ErrInvalidDeliveryCost = errors.New("invalid_delivery_cost")
	ErrInvalidTotalAmount  = errors.New("invalid_total_amount")
	ErrInvalidCustomer     = errors.New("invalid_customer")
	ErrInvalidState        = errors.New("invalid_state")
	ErrNotFound            = errors.New("not_found")
)
