package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/birracraft/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	if err := db.WithContext(ctx).Create(order).Error; err != nil {
		return err
	}
	return r.insertLinks(ctx, db, order.ID, order.ProductIDs)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	links, err := r.loadLinks(ctx, db, []snowflake.ID{order.ID})
	if err != nil {
		return nil, err
	}
	order.ProductIDs = links[order.ID]
	return &order, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Order, error) {
	var items []domain.Order
	stmt := db.WithContext(ctx).Model(&domain.Order{})

	if filter.CustomerID != 0 {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.State != "" {
		stmt = stmt.Where("state = ?", filter.State)
	}
	if !filter.DateFrom.IsZero() {
		stmt = stmt.Where("date >= ?", filter.DateFrom)
	}

	if err := stmt.Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	ids := make([]snowflake.ID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	links, err := r.loadLinks(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].ProductIDs = links[items[i].ID]
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	if order == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", order.ID).Updates(map[string]any{
		"date":          order.Date,
		"price":         order.Price,
		"delivery_cost": order.DeliveryCost,
		"total_amount":  order.TotalAmount,
		"customer_id":   order.CustomerID,
		"state":         order.State,
		"comment":       order.Comment,
		"updated_at":    order.UpdatedAt,
	}).Error
}

func (r *repo) ReplaceProducts(ctx context.Context, db *gorm.DB, orderID snowflake.ID, productIDs []snowflake.ID) error {
	if err := db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&domain.OrderProduct{}).Error; err != nil {
		return err
	}
	return r.insertLinks(ctx, db, orderID, productIDs)
}

func (r *repo) CustomerExists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Table("customers").Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) CountProducts(ctx context.Context, db *gorm.DB, ids []snowflake.ID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := db.WithContext(ctx).Table("products").Where("id IN ?", ids).Count(&count).Error
	return count, err
}

func (r *repo) insertLinks(ctx context.Context, db *gorm.DB, orderID snowflake.ID, productIDs []snowflake.ID) error {
	if len(productIDs) == 0 {
		return nil
	}
	links := make([]domain.OrderProduct, 0, len(productIDs))
	for _, productID := range productIDs {
		links = append(links, domain.OrderProduct{OrderID: orderID, ProductID: productID})
	}
	return db.WithContext(ctx).Create(&links).Error
}

func (r *repo) loadLinks(ctx context.Context, db *gorm.DB, orderIDs []snowflake.ID) (map[snowflake.ID][]snowflake.ID, error) {
	var links []domain.OrderProduct
	err := db.WithContext(ctx).
		Where("order_id IN ?", orderIDs).
		Order("order_id ASC, product_id ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	out := make(map[snowflake.ID][]snowflake.ID, len(orderIDs))
	for _, link := range links {
		out[link.OrderID] = append(out[link.OrderID], link.ProductID)
	}
	return out, nil
}
