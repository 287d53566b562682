package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Order, error)
	Update(ctx context.Context, db *gorm.DB, order *Order) error
	ReplaceProducts(ctx context.Context, db *gorm.DB, orderID snowflake.ID, productIDs []snowflake.ID) error
	CustomerExists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	CountProducts(ctx context.Context, db *gorm.DB, ids []snowflake.ID) (int64, error)
}
