package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceTotalsRow aggregates invoice amounts over a period.
type InvoiceTotalsRow struct {
	Count int64           `gorm:"column:count"`
	Total decimal.Decimal `gorm:"column:total"`
	Paid  decimal.Decimal `gorm:"column:paid"`
	Due   decimal.Decimal `gorm:"column:due"`
}

// ReportRepository serves the read-only reporting queries. It aggregates
// already-consistent rows and never mutates anything.
type ReportRepository interface {
	TotalReceivable(ctx context.Context) (decimal.Decimal, error)
	TotalPayable(ctx context.Context) (decimal.Decimal, error)
	SaleTotalsBetween(ctx context.Context, start, end time.Time) (InvoiceTotalsRow, error)
	PurchaseTotalsBetween(ctx context.Context, start, end time.Time) (InvoiceTotalsRow, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) TotalReceivable(ctx context.Context) (decimal.Decimal, error) {
	return r.sumBalance(ctx, "customers")
}

func (r *reportRepository) TotalPayable(ctx context.Context) (decimal.Decimal, error) {
	return r.sumBalance(ctx, "vendors")
}

func (r *reportRepository) sumBalance(ctx context.Context, table string) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	query := fmt.Sprintf("SELECT COALESCE(SUM(balance), 0) AS total FROM %s WHERE is_active = true AND deleted_at IS NULL", table)
	if err := r.db.WithContext(ctx).Raw(query).Scan(&row).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s balances: %w", table, err)
	}
	return row.Total, nil
}

func (r *reportRepository) SaleTotalsBetween(ctx context.Context, start, end time.Time) (InvoiceTotalsRow, error) {
	return r.invoiceTotals(ctx, "sales", "sale_date", start, end)
}

func (r *reportRepository) PurchaseTotalsBetween(ctx context.Context, start, end time.Time) (InvoiceTotalsRow, error) {
	return r.invoiceTotals(ctx, "purchases", "purchase_date", start, end)
}

func (r *reportRepository) invoiceTotals(ctx context.Context, table, dateCol string, start, end time.Time) (InvoiceTotalsRow, error) {
	var row InvoiceTotalsRow
	query := fmt.Sprintf(`
		SELECT
			COUNT(*) AS count,
			COALESCE(SUM(total_amount), 0) AS total,
			COALESCE(SUM(paid_amount), 0) AS paid,
			COALESCE(SUM(due_amount), 0) AS due
		FROM %s
		WHERE %s >= ? AND %s <= ? AND is_opening_balance = false
	`, table, dateCol, dateCol)
	if err := r.db.WithContext(ctx).Raw(query, start, end).Scan(&row).Error; err != nil {
		return InvoiceTotalsRow{}, fmt.Errorf("failed to query %s totals: %w", table, err)
	}
	return row, nil
}
