package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodDebitCard      Method = "Debit Card"
	MethodCreditCard     Method = "Credit Card"
	MethodCash           Method = "Cash"
	MethodBankTransfer   Method = "Bank Transfer"
	MethodDigitalWallet  Method = "Digital Wallet"
	MethodCryptocurrency Method = "Cryptocurrency"
)

func (m Method) Valid() bool {
	switch m {
	case MethodDebitCard, MethodCreditCard, MethodCash, MethodBankTransfer, MethodDigitalWallet, MethodCryptocurrency:
		return true
	default:
		return false
	}
}

// DefaultTransaction is the number given to the first payment when the caller sends none.
const DefaultTransaction int64 = 1

// Payment settles exactly one order. Transaction is allocated once at
// creation and never recomputed.
type Payment struct {
	ID          snowflake.ID    `gorm:"primaryKey;autoIncrement:false"`
	Transaction int64           `gorm:"column:transaction_number;not null;uniqueIndex:ux_payments_transaction"`
	Amount      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Method      Method          `gorm:"size:14;not null"`
	OrderID     snowflake.ID    `gorm:"not null;uniqueIndex:ux_payments_order"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

func (Payment) TableName() string { return "payments" }

const TransactionSequence = "payment_transaction"

// Sequence is a named counter advanced with a single upsert, which holds the
// row lock until the surrounding transaction ends.
type Sequence struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value int64  `gorm:"not null"`
}

func (Sequence) TableName() string { return "payment_sequences" }
