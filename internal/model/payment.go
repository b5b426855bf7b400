package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMode enum constants
const (
	PaymentModeCash   = "CASH"
	PaymentModeBank   = "BANK"
	PaymentModeOnline = "ONLINE"
)

// ValidPaymentMode reports whether m is a supported payment mode.
func ValidPaymentMode(m string) bool {
	return m == PaymentModeCash || m == PaymentModeBank || m == PaymentModeOnline
}

// PaymentHistory is an append-only record of money applied against a single
// invoice — exactly one of SaleID/PurchaseID is set. BalanceBefore and
// BalanceAfter snapshot the invoice due amount around the payment.
//
// Rows written by the payment recorder carry true before/after values.
// Rows written at invoice creation keep the legacy pass-through snapshots
// (see the purchase and sale services).
type PaymentHistory struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SaleID        *uuid.UUID      `gorm:"type:uuid;index" json:"sale_id"`
	PurchaseID    *uuid.UUID      `gorm:"type:uuid;index" json:"purchase_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	PaymentMode   string          `gorm:"type:varchar(10);not null" json:"payment_mode"` // CASH, BANK, ONLINE
	PaymentDate   time.Time       `gorm:"not null;index" json:"payment_date"`
	Notes         string          `gorm:"type:text" json:"notes"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"balance_after"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
}

// Transaction types
const (
	TxPaymentIn  = "PAYMENT_IN"  // money received from a customer
	TxPaymentOut = "PAYMENT_OUT" // money paid to a vendor
)

// Party kinds for transactions
const (
	PartyVendor   = "VENDOR"
	PartyCustomer = "CUSTOMER"
)

// Transaction reference types
const (
	TxRefPurchase = "PURCHASE"
	TxRefSale     = "SALE"
	TxRefPayment  = "PAYMENT"
)

// Transaction is the informational cash ledger: one append-only row per
// money movement. Reporting reads it; nothing reconciles against it.
type Transaction struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TxType        string          `gorm:"type:varchar(20);not null;index" json:"tx_type"` // PAYMENT_IN, PAYMENT_OUT
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	PaymentMode   string          `gorm:"type:varchar(10);not null" json:"payment_mode"`
	PartyKind     string          `gorm:"type:varchar(10)" json:"party_kind"` // VENDOR, CUSTOMER, empty for walk-in
	PartyID       *uuid.UUID      `gorm:"type:uuid;index" json:"party_id"`
	ReferenceType string          `gorm:"type:varchar(20);not null" json:"reference_type"` // PURCHASE, SALE, PAYMENT
	ReferenceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"reference_id"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
}
