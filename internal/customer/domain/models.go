package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Type string

const (
	TypeParticular Type = "Particular"
	TypeComerce    Type = "Comerce"
)

func (t Type) Valid() bool {
	switch t {
	case TypeParticular, TypeComerce:
		return true
	default:
		return false
	}
}

type Customer struct {
	ID        snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name      string       `gorm:"size:30;not null" json:"name"`
	Address   string       `gorm:"size:120;not null" json:"address"`
	Email     string       `gorm:"size:254;not null" json:"email"`
	Cellphone string       `gorm:"size:12;not null" json:"cellphone"`
	Type      Type         `gorm:"size:10;not null" json:"type"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }
