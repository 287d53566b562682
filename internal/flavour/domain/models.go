package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

const MaxNameLength = 15

type Flavour struct {
	ID          snowflake.ID    `gorm:"primaryKey;autoIncrement:false"`
	Name        string          `gorm:"size:15;not null"`
	Description string          `gorm:"type:text;not null"`
	PricePerLt  decimal.Decimal `gorm:"column:price_per_lt;type:numeric(10,2);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

func (Flavour) TableName() string { return "flavours" }
