package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is a customer invoice. CustomerID is null for walk-in sales, which
// must be fully paid at creation (DueAmount == 0). The same
// total == paid + due invariant as Purchase applies.
type Sale struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceNo         string          `gorm:"type:varchar(40);uniqueIndex;not null" json:"invoice_no"`
	CustomerID        *uuid.UUID      `gorm:"type:uuid;index" json:"customer_id"`
	Customer          *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	WalkInName        string          `gorm:"type:varchar(255)" json:"walk_in_name"`
	SaleDate          time.Time       `gorm:"not null;index" json:"sale_date"`
	Items             []SaleItem      `gorm:"foreignKey:SaleID" json:"items"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal"`
	AdditionalCharges decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"additional_charges"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	PaidAmount        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"paid_amount"`
	DueAmount         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"due_amount"`
	Notes             string          `gorm:"type:text" json:"notes"`
	IsWalkIn          bool            `gorm:"default:false" json:"is_walk_in"`
	IsOpeningBalance  bool            `gorm:"default:false" json:"is_opening_balance"`
	CreatedBy         *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// SaleItem is one invoice line. Immutable once created.
type SaleItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SaleID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product    *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}
