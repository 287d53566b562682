package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/birracraft/internal/payment/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *repo) FindByOrderID(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*domain.Payment, error) {
	return r.findOne(ctx, db, "order_id = ?", orderID)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, arg any) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).Where(query, arg).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Payment, error) {
	var items []domain.Payment
	stmt := db.WithContext(ctx).Model(&domain.Payment{})
	if filter.OrderID != 0 {
		stmt = stmt.Where("order_id = ?", filter.OrderID)
	}
	if err := stmt.Order("transaction_number ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	if payment == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Model(&domain.Payment{}).Where("id = ?", payment.ID).Updates(map[string]any{
		"amount":     payment.Amount,
		"method":     payment.Method,
		"order_id":   payment.OrderID,
		"updated_at": payment.UpdatedAt,
	}).Error
}

func (r *repo) OrderExists(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Table("orders").Where("id = ?", orderID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// NextTransaction advances the counter under its row lock. With no payments
// left the caller's initial value is used, as for the very first payment.
// Otherwise the counter never falls back, so numbers freed by deleting the
// latest payment are not reissued, and it is lifted past any number already
// stored.
func (r *repo) NextTransaction(ctx context.Context, db *gorm.DB, initial int64) (int64, error) {
	db = db.WithContext(ctx)
	seq := domain.Sequence{Name: domain.TransactionSequence, Value: initial}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]any{
			"value": gorm.Expr("payment_sequences.value + 1"),
		}),
	}).Create(&seq).Error
	if err != nil {
		return 0, err
	}

	var value int64
	err = db.Raw(
		`SELECT value FROM payment_sequences WHERE name = ?`,
		domain.TransactionSequence,
	).Scan(&value).Error
	if err != nil {
		return 0, err
	}

	var stored struct {
		Count int64
		Top   int64
	}
	err = db.Raw(
		`SELECT COUNT(*) AS count, COALESCE(MAX(transaction_number), 0) AS top FROM payments`,
	).Scan(&stored).Error
	if err != nil {
		return 0, err
	}

	next := value
	switch {
	case stored.Count == 0:
		next = initial
	case value <= stored.Top:
		next = stored.Top + 1
	}
	if next == value {
		return value, nil
	}
	err = db.Model(&domain.Sequence{}).
		Where("name = ?", domain.TransactionSequence).
		Update("value", next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}
