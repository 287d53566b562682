package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/birracraft/internal/product/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (id, code, container_id, flavour_id, arrived_date, price, state, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.Code,
		product.ContainerID,
		product.FlavourID,
		product.ArrivedDate,
		product.Price,
		product.State,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, container_id, flavour_id, arrived_date, price, state, created_at, updated_at
		 FROM products WHERE id = ?`,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Product, error) {
	var items []domain.Product
	stmt := db.WithContext(ctx).Model(&domain.Product{})

	if filter.State != "" {
		stmt = stmt.Where("state = ?", filter.State)
	}
	if filter.ContainerID != 0 {
		stmt = stmt.Where("container_id = ?", filter.ContainerID)
	}
	if filter.FlavourID != 0 {
		stmt = stmt.Where("flavour_id = ?", filter.FlavourID)
	}

	if err := stmt.Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE products
		 SET code = ?, container_id = ?, flavour_id = ?, arrived_date = ?, price = ?, state = ?, updated_at = ?
		 WHERE id = ?`,
		product.Code,
		product.ContainerID,
		product.FlavourID,
		product.ArrivedDate,
		product.Price,
		product.State,
		product.UpdatedAt,
		product.ID,
	).Error
}

func (r *repo) ContainerExists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	return exists(ctx, db, "containers", id)
}

func (r *repo) FlavourExists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	return exists(ctx, db, "flavours", id)
}

func exists(ctx context.Context, db *gorm.DB, table string, id snowflake.ID) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Table(table).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
