package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeKeg     Type = "Keg"
	TypeGrowler Type = "Growler"
	TypeBottle  Type = "Bottle"
)

func (t Type) Valid() bool {
	_, ok := permittedLiters[t]
	return ok
}

var permittedLiters = map[Type][]string{
	TypeKeg:     {"20", "30", "50"},
	TypeGrowler: {"2"},
	TypeBottle:  {"0.5", "1", "2"},
}

// PermittedLiters returns the sizes a container of type t is sold in.
// The mapping is advisory; writes are not checked against it.
func PermittedLiters(t Type) ([]decimal.Decimal, bool) {
	raw, ok := permittedLiters[t]
	if !ok {
		return nil, false
	}
	out := make([]decimal.Decimal, 0, len(raw))
	for _, v := range raw {
		out = append(out, decimal.RequireFromString(v))
	}
	return out, true
}

type Container struct {
	ID        snowflake.ID    `gorm:"primaryKey;autoIncrement:false"`
	Type      Type            `gorm:"size:7;not null"`
	Liters    decimal.Decimal `gorm:"type:numeric(4,2);not null"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

func (Container) TableName() string { return "containers" }
