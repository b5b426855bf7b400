package service

import (
	"context"
	"errors"
	"time"

	"backend/internal/apperror"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type RecordPaymentRequest struct {
	SaleID      string `json:"sale_id"`
	PurchaseID  string `json:"purchase_id"`
	Amount      string `json:"amount" binding:"required"`
	PaymentMode string `json:"payment_mode" binding:"required"`
	PaymentDate string `json:"payment_date"` // YYYY-MM-DD, defaults to today
	Notes       string `json:"notes"`
}

type PaymentHistoryResponse struct {
	ID            string  `json:"id"`
	SaleID        *string `json:"sale_id"`
	PurchaseID    *string `json:"purchase_id"`
	Amount        string  `json:"amount"`
	PaymentMode   string  `json:"payment_mode"`
	PaymentDate   string  `json:"payment_date"`
	Notes         string  `json:"notes"`
	BalanceBefore string  `json:"balance_before"`
	BalanceAfter  string  `json:"balance_after"`
	CreatedAt     string  `json:"created_at"`
}

// RecordPaymentResponse returns the payment row together with the updated
// invoice totals.
type RecordPaymentResponse struct {
	Payment     PaymentHistoryResponse `json:"payment"`
	InvoiceNo   string                 `json:"invoice_no"`
	TotalAmount string                 `json:"total_amount"`
	PaidAmount  string                 `json:"paid_amount"`
	DueAmount   string                 `json:"due_amount"`
}

// --- Interface ---

type PaymentService interface {
	RecordPayment(ctx context.Context, actorID string, req RecordPaymentRequest) (RecordPaymentResponse, error)
	ListForInvoice(ctx context.Context, saleID, purchaseID string) ([]PaymentHistoryResponse, error)
}

type paymentService struct {
	saleRepo     repository.SaleRepository
	purchaseRepo repository.PurchaseRepository
	vendorRepo   repository.VendorRepository
	customerRepo repository.CustomerRepository
	paymentRepo  repository.PaymentHistoryRepository
	txRepo       repository.TransactionRepository
	txManager    repository.TransactionManager
}

func NewPaymentService(
	saleRepo repository.SaleRepository,
	purchaseRepo repository.PurchaseRepository,
	vendorRepo repository.VendorRepository,
	customerRepo repository.CustomerRepository,
	paymentRepo repository.PaymentHistoryRepository,
	txRepo repository.TransactionRepository,
	txManager repository.TransactionManager,
) PaymentService {
	return &paymentService{
		saleRepo:     saleRepo,
		purchaseRepo: purchaseRepo,
		vendorRepo:   vendorRepo,
		customerRepo: customerRepo,
		paymentRepo:  paymentRepo,
		txRepo:       txRepo,
		txManager:    txManager,
	}
}

// --- Implementation ---

// RecordPayment applies a partial or full payment against exactly one
// invoice: paid up, due down, owning party's balance down — atomically.
// The due-amount update is guarded, so two payments racing past the
// pre-check can never jointly exceed the due amount. This is the one flow
// that writes true due before/after snapshots into PaymentHistory.
func (s *paymentService) RecordPayment(ctx context.Context, actorID string, req RecordPaymentRequest) (RecordPaymentResponse, error) {
	if (req.SaleID == "") == (req.PurchaseID == "") {
		return RecordPaymentResponse{}, apperror.Validation("provide exactly one of sale_id or purchase_id")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return RecordPaymentResponse{}, apperror.Validation("amount must be a positive number")
	}
	if !model.ValidPaymentMode(req.PaymentMode) {
		return RecordPaymentResponse{}, apperror.Validation("invalid payment_mode: %s", req.PaymentMode)
	}
	paymentDate, err := parseDate("payment_date", req.PaymentDate)
	if err != nil {
		return RecordPaymentResponse{}, err
	}

	actor := parseActor(actorID)
	if req.PurchaseID != "" {
		return s.recordPurchasePayment(ctx, actor, req, amount, paymentDate)
	}
	return s.recordSalePayment(ctx, actor, req, amount, paymentDate)
}

func (s *paymentService) recordPurchasePayment(ctx context.Context, actor *uuid.UUID, req RecordPaymentRequest, amount decimal.Decimal, paymentDate time.Time) (RecordPaymentResponse, error) {
	purchaseID, err := uuid.Parse(req.PurchaseID)
	if err != nil {
		return RecordPaymentResponse{}, apperror.Validation("invalid purchase_id: %s", req.PurchaseID)
	}

	// Cheap pre-check outside the transaction; the guarded update below is
	// what actually enforces the limit under concurrency.
	purchase, err := s.purchaseRepo.FindByID(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RecordPaymentResponse{}, apperror.NotFound("purchase")
		}
		return RecordPaymentResponse{}, err
	}
	if amount.GreaterThan(purchase.DueAmount) {
		return RecordPaymentResponse{}, apperror.New(apperror.CodePaymentExceedsDue,
			"payment amount %s exceeds due amount %s", amount.String(), purchase.DueAmount.String())
	}

	var payment model.PaymentHistory
	var updated *model.Purchase
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		ok, applyErr := s.purchaseRepo.ApplyPayment(txCtx, purchaseID, amount)
		if applyErr != nil {
			return applyErr
		}
		if !ok {
			return apperror.New(apperror.CodePaymentExceedsDue,
				"payment amount %s exceeds current due amount", amount.String())
		}

		var reloadErr error
		updated, reloadErr = s.purchaseRepo.FindByID(txCtx, purchaseID)
		if reloadErr != nil {
			return reloadErr
		}

		if balErr := s.vendorRepo.IncrementBalance(txCtx, updated.VendorID, amount.Neg()); balErr != nil {
			return balErr
		}

		payment = model.PaymentHistory{
			PurchaseID:    &purchaseID,
			Amount:        amount,
			PaymentMode:   req.PaymentMode,
			PaymentDate:   paymentDate,
			Notes:         req.Notes,
			BalanceBefore: updated.DueAmount.Add(amount),
			BalanceAfter:  updated.DueAmount,
			CreatedBy:     actor,
		}
		if payErr := s.paymentRepo.Create(txCtx, &payment); payErr != nil {
			return payErr
		}

		return s.txRepo.Create(txCtx, &model.Transaction{
			TxType:        model.TxPaymentOut,
			Amount:        amount,
			PaymentMode:   req.PaymentMode,
			PartyKind:     model.PartyVendor,
			PartyID:       &updated.VendorID,
			ReferenceType: model.TxRefPayment,
			ReferenceID:   payment.ID,
			Notes:         req.Notes,
			CreatedBy:     actor,
		})
	})
	if err != nil {
		return RecordPaymentResponse{}, wrapInternal(err, "failed to record payment")
	}

	return RecordPaymentResponse{
		Payment:     toPaymentResponse(payment),
		InvoiceNo:   updated.InvoiceNo,
		TotalAmount: updated.TotalAmount.StringFixed(4),
		PaidAmount:  updated.PaidAmount.StringFixed(4),
		DueAmount:   updated.DueAmount.StringFixed(4),
	}, nil
}

func (s *paymentService) recordSalePayment(ctx context.Context, actor *uuid.UUID, req RecordPaymentRequest, amount decimal.Decimal, paymentDate time.Time) (RecordPaymentResponse, error) {
	saleID, err := uuid.Parse(req.SaleID)
	if err != nil {
		return RecordPaymentResponse{}, apperror.Validation("invalid sale_id: %s", req.SaleID)
	}

	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RecordPaymentResponse{}, apperror.NotFound("sale")
		}
		return RecordPaymentResponse{}, err
	}
	if amount.GreaterThan(sale.DueAmount) {
		return RecordPaymentResponse{}, apperror.New(apperror.CodePaymentExceedsDue,
			"payment amount %s exceeds due amount %s", amount.String(), sale.DueAmount.String())
	}

	var payment model.PaymentHistory
	var updated *model.Sale
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		ok, applyErr := s.saleRepo.ApplyPayment(txCtx, saleID, amount)
		if applyErr != nil {
			return applyErr
		}
		if !ok {
			return apperror.New(apperror.CodePaymentExceedsDue,
				"payment amount %s exceeds current due amount", amount.String())
		}

		var reloadErr error
		updated, reloadErr = s.saleRepo.FindByID(txCtx, saleID)
		if reloadErr != nil {
			return reloadErr
		}

		// Walk-in sales carry no party; there is no balance to reduce.
		if updated.CustomerID != nil {
			if balErr := s.customerRepo.IncrementBalance(txCtx, *updated.CustomerID, amount.Neg()); balErr != nil {
				return balErr
			}
		}

		payment = model.PaymentHistory{
			SaleID:        &saleID,
			Amount:        amount,
			PaymentMode:   req.PaymentMode,
			PaymentDate:   paymentDate,
			Notes:         req.Notes,
			BalanceBefore: updated.DueAmount.Add(amount),
			BalanceAfter:  updated.DueAmount,
			CreatedBy:     actor,
		}
		if payErr := s.paymentRepo.Create(txCtx, &payment); payErr != nil {
			return payErr
		}

		tx := &model.Transaction{
			TxType:        model.TxPaymentIn,
			Amount:        amount,
			PaymentMode:   req.PaymentMode,
			ReferenceType: model.TxRefPayment,
			ReferenceID:   payment.ID,
			Notes:         req.Notes,
			CreatedBy:     actor,
		}
		if updated.CustomerID != nil {
			tx.PartyKind = model.PartyCustomer
			tx.PartyID = updated.CustomerID
		}
		return s.txRepo.Create(txCtx, tx)
	})
	if err != nil {
		return RecordPaymentResponse{}, wrapInternal(err, "failed to record payment")
	}

	return RecordPaymentResponse{
		Payment:     toPaymentResponse(payment),
		InvoiceNo:   updated.InvoiceNo,
		TotalAmount: updated.TotalAmount.StringFixed(4),
		PaidAmount:  updated.PaidAmount.StringFixed(4),
		DueAmount:   updated.DueAmount.StringFixed(4),
	}, nil
}

func (s *paymentService) ListForInvoice(ctx context.Context, saleID, purchaseID string) ([]PaymentHistoryResponse, error) {
	if (saleID == "") == (purchaseID == "") {
		return nil, apperror.Validation("provide exactly one of sale_id or purchase_id")
	}

	var payments []model.PaymentHistory
	if purchaseID != "" {
		id, err := uuid.Parse(purchaseID)
		if err != nil {
			return nil, apperror.Validation("invalid purchase_id: %s", purchaseID)
		}
		payments, err = s.paymentRepo.ListForPurchase(ctx, id)
		if err != nil {
			return nil, wrapInternal(err, "failed to fetch payments")
		}
	} else {
		id, err := uuid.Parse(saleID)
		if err != nil {
			return nil, apperror.Validation("invalid sale_id: %s", saleID)
		}
		payments, err = s.paymentRepo.ListForSale(ctx, id)
		if err != nil {
			return nil, wrapInternal(err, "failed to fetch payments")
		}
	}

	result := make([]PaymentHistoryResponse, 0, len(payments))
	for _, payment := range payments {
		result = append(result, toPaymentResponse(payment))
	}
	return result, nil
}

// --- Mapping ---

func toPaymentResponse(payment model.PaymentHistory) PaymentHistoryResponse {
	resp := PaymentHistoryResponse{
		ID:            payment.ID.String(),
		Amount:        payment.Amount.StringFixed(4),
		PaymentMode:   payment.PaymentMode,
		PaymentDate:   payment.PaymentDate.Format("2006-01-02"),
		Notes:         payment.Notes,
		BalanceBefore: payment.BalanceBefore.StringFixed(4),
		BalanceAfter:  payment.BalanceAfter.StringFixed(4),
		CreatedAt:     payment.CreatedAt.Format(time.RFC3339),
	}
	if payment.SaleID != nil {
		id := payment.SaleID.String()
		resp.SaleID = &id
	}
	if payment.PurchaseID != nil {
		id := payment.PurchaseID.String()
		resp.PurchaseID = &id
	}
	return resp
}
