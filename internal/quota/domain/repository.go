package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, quota *Quota) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Quota, error)
	List(ctx context.Context, db *gorm.DB) ([]Quota, error)
	ListByPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) ([]Quota, error)
	Update(ctx context.Context, db *gorm.DB, quota *Quota) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	PaymentExists(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) (bool, error)
}
