package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/birracraft/pkg/date"
)

// Request is the input handed to the report worker.
type Request struct {
	Email    string    `json:"email"`
	Username string    `json:"username"`
	DateFrom date.Date `json:"date_from"`
}

// Job is a queued Request. ID is a ULID so jobs sort by enqueue time.
type Job struct {
	ID         string    `json:"id"`
	Request    Request   `json:"request"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Enqueuer is the only capability the API needs from the report subsystem.
type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) error
}

// Queue hands jobs from the API to the worker. Dequeue returns nil, nil when
// no job arrived before the backend's poll timeout.
type Queue interface {
	Enqueuer
	Dequeue(ctx context.Context) (*Job, error)
	Backend() string
	Close() error
}

type Service interface {
	// Request validates req and enqueues it, returning the job id.
	Request(ctx context.Context, req Request) (string, error)
}

// Row is one order line of the sales report with its payment summary.
type Row struct {
	OrderID      snowflake.ID
	OrderDate    date.Date
	CustomerName string
	State        string
	TotalAmount  decimal.Decimal
	Txn          *int64
	Method       *string
	Amount       decimal.NullDecimal
	QuotaCount   int64
	QuotaTotal   decimal.NullDecimal
}

type Repository interface {
	// OrdersSince returns at most limit rows with date >= from, oldest first.
	OrdersSince(ctx context.Context, from date.Date, limit int) ([]Row, error)
}

var (
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidUsername = errors.New("invalid_username")
	ErrInvalidDateFrom = errors.New("invalid_date_from")
	ErrQueueFull       = errors.New("report_queue_full")
	ErrQueueClosed     = errors.New("report_queue_closed")
)
