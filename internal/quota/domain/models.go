package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/birracraft/pkg/date"
)

// Quota is one installment of a payment. The schedule is not checked
// against the payment: values need not add up to the amount and
// positions need not be contiguous or unique.
type Quota struct {
	ID           snowflake.ID    `gorm:"primaryKey;autoIncrement:false"`
	CurrentQuota int             `gorm:"not null"`
	TotalQuota   int             `gorm:"not null"`
	Value        decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Date         date.Date       `gorm:"not null"`
	PaymentID    snowflake.ID    `gorm:"not null;index"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

func (Quota) TableName() string { return "quotas" }
