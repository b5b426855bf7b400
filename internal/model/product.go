package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Unit enum constants
const (
	UnitBag   = "BAG"
	UnitKg    = "KG"
	UnitTon   = "TON"
	UnitPiece = "PIECE"
	UnitMeter = "METER"
	UnitSqft  = "SQFT"
	UnitCuft  = "CUFT"
)

// ValidUnit reports whether u is one of the supported measurement units.
func ValidUnit(u string) bool {
	switch u {
	case UnitBag, UnitKg, UnitTon, UnitPiece, UnitMeter, UnitSqft, UnitCuft:
		return true
	}
	return false
}

// Product represents a stocked item. StockQuantity is only ever mutated
// through the invoice engine or a manual stock adjustment, each of which
// appends a StockMovement in the same transaction.
type Product struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SKU               string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku"`
	Name              string          `gorm:"type:varchar(255);not null" json:"name"`
	Unit              string          `gorm:"type:varchar(10);not null" json:"unit"` // BAG, KG, TON, PIECE, METER, SQFT, CUFT
	StockQuantity     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"stock_quantity"`
	MinimumStockLevel decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"minimum_stock_level"`
	PurchaseRate      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"purchase_rate"`
	SaleRate          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"sale_rate"`
	IsActive          bool            `gorm:"default:true" json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
}

// MovementType enum constants
const (
	MovementPurchase      = "PURCHASE"
	MovementSale          = "SALE"
	MovementAdjustmentIn  = "ADJUSTMENT_IN"
	MovementAdjustmentOut = "ADJUSTMENT_OUT"
)

// Stock movement reference types
const (
	StockRefPurchase   = "PURCHASE"
	StockRefSale       = "SALE"
	StockRefAdjustment = "ADJUSTMENT"
)

// StockMovement is one immutable audit row per stock-quantity change, with
// the balance captured before and after the write.
type StockMovement struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product       *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	MovementType  string          `gorm:"type:varchar(20);not null;index" json:"movement_type"` // PURCHASE, SALE, ADJUSTMENT_IN, ADJUSTMENT_OUT
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"balance_after"`
	ReferenceType string          `gorm:"type:varchar(20);not null;index" json:"reference_type"` // PURCHASE, SALE, ADJUSTMENT
	ReferenceID   *uuid.UUID      `gorm:"type:uuid;index" json:"reference_id"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
}
