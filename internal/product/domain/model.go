package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/birracraft/pkg/date"
)

type State string

const (
	StateInStock   State = "In Stock"
	StateInTransit State = "In Transit"
	StateEmpty     State = "Empty"
)

// Valid checks membership only; any state may follow any other.
func (s State) Valid() bool {
	switch s {
	case StateInStock, StateInTransit, StateEmpty:
		return true
	default:
		return false
	}
}

const MaxCodeLength = 5

type Product struct {
	ID          snowflake.ID    `gorm:"primaryKey;autoIncrement:false"`
	Code        string          `gorm:"size:5;not null"`
	ContainerID snowflake.ID    `gorm:"not null;index"`
	FlavourID   snowflake.ID    `gorm:"not null;index"`
	ArrivedDate date.Date       `gorm:"not null"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	State       State           `gorm:"size:10;not null"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

func (Product) TableName() string { return "products" }
