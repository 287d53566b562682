package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Product, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Product, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	ContainerExists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	FlavourExists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}
