package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Vendor is a supplier the shop buys from. Balance is the amount the shop
// still owes the vendor; it mirrors the sum of due amounts across the
// vendor's purchases and is only mutated in the same transaction as the
// purchase or payment that changes those dues.
type Vendor struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Phone     string          `gorm:"type:varchar(50)" json:"phone"`
	Address   string          `gorm:"type:text" json:"address"`
	Balance   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"balance"`
	IsActive  bool            `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

// Customer is a registered buyer. Balance is the amount the customer still
// owes the shop, maintained under the same rules as Vendor.Balance.
type Customer struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Phone     string          `gorm:"type:varchar(50)" json:"phone"`
	Address   string          `gorm:"type:text" json:"address"`
	Balance   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"balance"`
	IsActive  bool            `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}
