package repository

import (
	"context"

	"github.com/smallbiznis/birracraft/internal/report/domain"
	"github.com/smallbiznis/birracraft/pkg/date"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) OrdersSince(ctx context.Context, from date.Date, limit int) ([]domain.Row, error) {
	var rows []domain.Row
	stmt := r.db.WithContext(ctx).
		Table("orders AS o").
		Select(`o.id AS order_id,
			o.date AS order_date,
			c.name AS customer_name,
			o.state AS state,
			o.total_amount AS total_amount,
			p.transaction_number AS txn,
			p.method AS method,
			p.amount AS amount,
			(SELECT COUNT(1) FROM quotas q WHERE q.payment_id = p.id) AS quota_count,
			(SELECT SUM(q.value) FROM quotas q WHERE q.payment_id = p.id) AS quota_total`).
		Joins("JOIN customers c ON c.id = o.customer_id").
		Joins("LEFT JOIN payments p ON p.order_id = o.id").
		Where("o.date >= ?", from).
		Order("o.date ASC, o.id ASC")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
