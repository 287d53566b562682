package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/birracraft/pkg/date"
)

type State string

const (
	StatePending  State = "Pending"
	StateInQuotas State = "In Quotas"
	StatePaid     State = "Paid"
)

// Valid checks membership only. Transitions are not enforced, so an order
// may move from Paid back to Pending if a caller asks for it.
func (s State) Valid() bool {
	switch s {
	case StatePending, StateInQuotas, StatePaid:
		return true
	default:
		return false
	}
}

type Order struct {
	ID           snowflake.ID    `gorm:"primaryKey;autoIncrement:false"`
	Date         date.Date       `gorm:"not null;index"`
	Price        decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	DeliveryCost decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	TotalAmount  decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	CustomerID   snowflake.ID    `gorm:"not null;index"`
	State        State           `gorm:"size:9;not null"`
	Comment      string          `gorm:"type:text;not null"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`

	ProductIDs []snowflake.ID `gorm:"-"`
}

func (Order) TableName() string { return "orders" }

// OrderProduct links an order to a product. Removing a link never touches the product.
type OrderProduct struct {
	OrderID   snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	ProductID snowflake.ID `gorm:"primaryKey;autoIncrement:false;index"`
}

func (OrderProduct) TableName() string { return "order_products" }
