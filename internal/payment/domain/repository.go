package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	FindByOrderID(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*Payment, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Payment, error)
	Update(ctx context.Context, db *gorm.DB, payment *Payment) error
	OrderExists(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (bool, error)
	// NextTransaction advances the transaction counter and returns the new value.
	// The first call stores initial as is. Must run inside a transaction.
	NextTransaction(ctx context.Context, db *gorm.DB, initial int64) (int64, error)
}
