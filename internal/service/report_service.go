package service

import (
	"context"
	"time"

	"backend/internal/apperror"
	"backend/internal/repository"
)

type PeriodTotals struct {
	InvoiceCount int64  `json:"invoice_count"`
	TotalAmount  string `json:"total_amount"`
	PaidAmount   string `json:"paid_amount"`
	DueAmount    string `json:"due_amount"`
}

// DashboardResponse is the at-a-glance view: today's trade, outstanding
// money on both sides of the ledger, and products at or below their
// minimum stock level.
type DashboardResponse struct {
	TodaySales       PeriodTotals      `json:"today_sales"`
	TodayPurchases   PeriodTotals      `json:"today_purchases"`
	TotalReceivable  string            `json:"total_receivable"`
	TotalPayable     string            `json:"total_payable"`
	LowStockProducts []ProductResponse `json:"low_stock_products"`
}

type SummaryResponse struct {
	StartDate string       `json:"start_date"`
	EndDate   string       `json:"end_date"`
	Sales     PeriodTotals `json:"sales"`
	Purchases PeriodTotals `json:"purchases"`
}

type ReportService interface {
	Dashboard(ctx context.Context) (DashboardResponse, error)
	Summary(ctx context.Context, startDate, endDate string) (SummaryResponse, error)
}

type reportService struct {
	reportRepo  repository.ReportRepository
	productRepo repository.ProductRepository
}

func NewReportService(reportRepo repository.ReportRepository, productRepo repository.ProductRepository) ReportService {
	return &reportService{reportRepo: reportRepo, productRepo: productRepo}
}

func (s *reportService) Dashboard(ctx context.Context) (DashboardResponse, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	sales, err := s.reportRepo.SaleTotalsBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return DashboardResponse{}, wrapInternal(err, "failed to aggregate sales")
	}
	purchases, err := s.reportRepo.PurchaseTotalsBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return DashboardResponse{}, wrapInternal(err, "failed to aggregate purchases")
	}
	receivable, err := s.reportRepo.TotalReceivable(ctx)
	if err != nil {
		return DashboardResponse{}, wrapInternal(err, "failed to aggregate receivables")
	}
	payable, err := s.reportRepo.TotalPayable(ctx)
	if err != nil {
		return DashboardResponse{}, wrapInternal(err, "failed to aggregate payables")
	}
	lowStock, err := s.productRepo.ListBelowMinimum(ctx)
	if err != nil {
		return DashboardResponse{}, wrapInternal(err, "failed to list low stock products")
	}

	lowStockResponses := make([]ProductResponse, 0, len(lowStock))
	for _, product := range lowStock {
		lowStockResponses = append(lowStockResponses, toProductResponse(product))
	}

	return DashboardResponse{
		TodaySales:       toPeriodTotals(sales),
		TodayPurchases:   toPeriodTotals(purchases),
		TotalReceivable:  receivable.StringFixed(4),
		TotalPayable:     payable.StringFixed(4),
		LowStockProducts: lowStockResponses,
	}, nil
}

// Summary aggregates both invoice books over an inclusive date range.
// Opening-balance invoices are excluded; they are carried debt, not trade.
func (s *reportService) Summary(ctx context.Context, startDate, endDate string) (SummaryResponse, error) {
	start, err := parseDate("start_date", startDate)
	if err != nil {
		return SummaryResponse{}, err
	}
	end, err := parseDate("end_date", endDate)
	if err != nil {
		return SummaryResponse{}, err
	}
	end = end.Add(24*time.Hour - time.Nanosecond)
	if end.Before(start) {
		return SummaryResponse{}, apperror.Validation("end_date is before start_date")
	}

	sales, err := s.reportRepo.SaleTotalsBetween(ctx, start, end)
	if err != nil {
		return SummaryResponse{}, wrapInternal(err, "failed to aggregate sales")
	}
	purchases, err := s.reportRepo.PurchaseTotalsBetween(ctx, start, end)
	if err != nil {
		return SummaryResponse{}, wrapInternal(err, "failed to aggregate purchases")
	}

	return SummaryResponse{
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		Sales:     toPeriodTotals(sales),
		Purchases: toPeriodTotals(purchases),
	}, nil
}

func toPeriodTotals(row repository.InvoiceTotalsRow) PeriodTotals {
	return PeriodTotals{
		InvoiceCount: row.Count,
		TotalAmount:  row.Total.StringFixed(4),
		PaidAmount:   row.Paid.StringFixed(4),
		DueAmount:    row.Due.StringFixed(4),
	}
}
