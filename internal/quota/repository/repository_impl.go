package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/birracraft/internal/quota/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, quota *domain.Quota) error {
	return db.WithContext(ctx).Create(quota).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Quota, error) {
	var quota domain.Quota
	err := db.WithContext(ctx).Where("id = ?", id).First(&quota).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &quota, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Quota, error) {
	var items []domain.Quota
	if err := db.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListByPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) ([]domain.Quota, error) {
	var items []domain.Quota
	err := db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("current_quota ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, quota *domain.Quota) error {
	if quota == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Model(&domain.Quota{}).Where("id = ?", quota.ID).Updates(map[string]any{
		"current_quota": quota.CurrentQuota,
		"total_quota":   quota.TotalQuota,
		"value":         quota.Value,
		"date":          quota.Date,
		"payment_id":    quota.PaymentID,
		"updated_at":    quota.UpdatedAt,
	}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Quota{}).Error
}

func (r *repo) PaymentExists(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Table("payments").Where("id = ?", paymentID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
