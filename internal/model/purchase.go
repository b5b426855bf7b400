package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase is a vendor invoice. TotalAmount == PaidAmount + DueAmount holds
// at all times; DueAmount only ever decreases, through the payment recorder.
// Purchases are never deleted or voided.
type Purchase struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceNo        string          `gorm:"type:varchar(40);uniqueIndex;not null" json:"invoice_no"`
	VendorID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"vendor_id"`
	Vendor           *Vendor         `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	PurchaseDate     time.Time       `gorm:"not null;index" json:"purchase_date"`
	Items            []PurchaseItem  `gorm:"foreignKey:PurchaseID" json:"items"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	PaidAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"paid_amount"`
	DueAmount        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"due_amount"`
	Notes            string          `gorm:"type:text" json:"notes"`
	IsOpeningBalance bool            `gorm:"default:false" json:"is_opening_balance"`
	CreatedBy        *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// PurchaseItem is one invoice line. Immutable once created.
type PurchaseItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PurchaseID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product    *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}
