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

// InvoiceItemRequest is one line of a purchase or sale request. Amounts
// travel as strings and are parsed into decimals, never floats.
type InvoiceItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  string `json:"quantity" binding:"required"`
	UnitPrice string `json:"unit_price" binding:"required"`
}

type CreatePurchaseRequest struct {
	VendorID     string               `json:"vendor_id" binding:"required"`
	PurchaseDate string               `json:"purchase_date"` // YYYY-MM-DD, defaults to today
	Items        []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	PaidAmount   string               `json:"paid_amount"`
	PaymentMode  string               `json:"payment_mode"`
	Notes        string               `json:"notes"`
}

type InvoiceItemResponse struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TotalPrice  string `json:"total_price"`
}

type PurchaseResponse struct {
	ID               string                `json:"id"`
	InvoiceNo        string                `json:"invoice_no"`
	VendorID         string                `json:"vendor_id"`
	VendorName       string                `json:"vendor_name"`
	PurchaseDate     string                `json:"purchase_date"`
	Items            []InvoiceItemResponse `json:"items"`
	TotalAmount      string                `json:"total_amount"`
	PaidAmount       string                `json:"paid_amount"`
	DueAmount        string                `json:"due_amount"`
	Notes            string                `json:"notes"`
	IsOpeningBalance bool                  `json:"is_opening_balance"`
	CreatedAt        string                `json:"created_at"`
}

type PurchaseListFilter struct {
	VendorID  string
	InvoiceNo string
	DueOnly   bool
	Page      int
	Limit     int
}

// parsedItem is a validated invoice line.
type parsedItem struct {
	productID  uuid.UUID
	quantity   decimal.Decimal
	unitPrice  decimal.Decimal
	totalPrice decimal.Decimal
}

// parseInvoiceItems validates every line and returns the parsed lines, the
// distinct product IDs for batch fetching, and the computed subtotal.
func parseInvoiceItems(items []InvoiceItemRequest) ([]parsedItem, []uuid.UUID, decimal.Decimal, error) {
	parsed := make([]parsedItem, 0, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	subtotal := decimal.Zero

	for _, item := range items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, nil, decimal.Zero, apperror.Validation("invalid product_id: %s", item.ProductID)
		}
		quantity, err := decimal.NewFromString(item.Quantity)
		if err != nil || !quantity.IsPositive() {
			return nil, nil, decimal.Zero, apperror.Validation("quantity must be a positive number")
		}
		unitPrice, err := decimal.NewFromString(item.UnitPrice)
		if err != nil || !unitPrice.IsPositive() {
			return nil, nil, decimal.Zero, apperror.Validation("unit_price must be a positive number")
		}

		total := quantity.Mul(unitPrice)
		subtotal = subtotal.Add(total)
		parsed = append(parsed, parsedItem{productID: pid, quantity: quantity, unitPrice: unitPrice, totalPrice: total})
		if !seen[pid] {
			seen[pid] = true
			ids = append(ids, pid)
		}
	}

	return parsed, ids, subtotal, nil
}

// fetchProductMap batch-fetches the referenced products (one query for the
// whole invoice) and verifies each one exists and is active.
func fetchProductMap(ctx context.Context, products repository.ProductRepository, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error) {
	fetched, err := products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*model.Product, len(fetched))
	for i := range fetched {
		byID[fetched[i].ID] = &fetched[i]
	}
	for _, id := range ids {
		product, ok := byID[id]
		if !ok {
			return nil, apperror.NotFound("product")
		}
		if !product.IsActive {
			return nil, apperror.Validation("product %s is inactive", product.Name)
		}
	}
	return byID, nil
}

// --- Interface ---

type PurchaseService interface {
	CreatePurchase(ctx context.Context, actorID string, req CreatePurchaseRequest) (PurchaseResponse, error)
	GetPurchase(ctx context.Context, id string) (PurchaseResponse, error)
	ListPurchases(ctx context.Context, filter PurchaseListFilter) ([]PurchaseResponse, int64, error)
}

type purchaseService struct {
	purchaseRepo repository.PurchaseRepository
	vendorRepo   repository.VendorRepository
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	paymentRepo  repository.PaymentHistoryRepository
	txRepo       repository.TransactionRepository
	txManager    repository.TransactionManager
	notifier     StockNotifier
}

func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	vendorRepo repository.VendorRepository,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	paymentRepo repository.PaymentHistoryRepository,
	txRepo repository.TransactionRepository,
	txManager repository.TransactionManager,
	notifier StockNotifier,
) PurchaseService {
	return &purchaseService{
		purchaseRepo: purchaseRepo,
		vendorRepo:   vendorRepo,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		paymentRepo:  paymentRepo,
		txRepo:       txRepo,
		txManager:    txManager,
		notifier:     notifier,
	}
}

// --- Implementation ---

// CreatePurchase records a vendor invoice: stock in, vendor balance up by
// the unpaid remainder, one StockMovement per line — all in one
// transaction. Purchases always increase stock and are never blocked by
// the negative-stock policy.
func (s *purchaseService) CreatePurchase(ctx context.Context, actorID string, req CreatePurchaseRequest) (PurchaseResponse, error) {
	vendorID, err := uuid.Parse(req.VendorID)
	if err != nil {
		return PurchaseResponse{}, apperror.Validation("invalid vendor_id: %s", req.VendorID)
	}

	items, productIDs, total, err := parseInvoiceItems(req.Items)
	if err != nil {
		return PurchaseResponse{}, err
	}

	paid, err := parseAmount("paid_amount", req.PaidAmount)
	if err != nil {
		return PurchaseResponse{}, err
	}

	paymentMode := req.PaymentMode
	if paymentMode == "" {
		paymentMode = model.PaymentModeCash
	}
	if !model.ValidPaymentMode(paymentMode) {
		return PurchaseResponse{}, apperror.Validation("invalid payment_mode: %s", paymentMode)
	}

	purchaseDate, err := parseDate("purchase_date", req.PurchaseDate)
	if err != nil {
		return PurchaseResponse{}, err
	}

	// Purchases carry no upper clamp on paid amount; overpayment simply
	// yields a negative due, which the shop treats as vendor credit.
	due := total.Sub(paid)
	actor := parseActor(actorID)

	var purchase model.Purchase
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		vendor, findErr := s.vendorRepo.FindByID(txCtx, vendorID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("vendor")
			}
			return findErr
		}
		if !vendor.IsActive {
			return apperror.Validation("vendor %s is inactive", vendor.Name)
		}

		if _, mapErr := fetchProductMap(txCtx, s.productRepo, productIDs); mapErr != nil {
			return mapErr
		}

		purchase = model.Purchase{
			InvoiceNo:    generateInvoiceNo(invoicePrefixPurchase),
			VendorID:     vendorID,
			PurchaseDate: purchaseDate,
			TotalAmount:  total,
			PaidAmount:   paid,
			DueAmount:    due,
			Notes:        req.Notes,
			CreatedBy:    actor,
		}
		if createErr := s.purchaseRepo.Create(txCtx, &purchase); createErr != nil {
			return createErr
		}

		for _, item := range items {
			if _, deltaErr := applyStockDelta(txCtx, s.productRepo, s.movementRepo, stockDelta{
				ProductID:     item.productID,
				Quantity:      item.quantity,
				MovementType:  model.MovementPurchase,
				ReferenceType: model.StockRefPurchase,
				ReferenceID:   &purchase.ID,
				Notes:         "purchase " + purchase.InvoiceNo,
				ActorID:       actor,
			}); deltaErr != nil {
				return deltaErr
			}

			if itemErr := s.purchaseRepo.CreateItem(txCtx, &model.PurchaseItem{
				PurchaseID: purchase.ID,
				ProductID:  item.productID,
				Quantity:   item.quantity,
				UnitPrice:  item.unitPrice,
				TotalPrice: item.totalPrice,
			}); itemErr != nil {
				return itemErr
			}
		}

		if balErr := s.vendorRepo.IncrementBalance(txCtx, vendorID, due); balErr != nil {
			return balErr
		}

		if paid.IsPositive() {
			if txErr := s.txRepo.Create(txCtx, &model.Transaction{
				TxType:        model.TxPaymentOut,
				Amount:        paid,
				PaymentMode:   paymentMode,
				PartyKind:     model.PartyVendor,
				PartyID:       &vendorID,
				ReferenceType: model.TxRefPurchase,
				ReferenceID:   purchase.ID,
				Notes:         req.Notes,
				CreatedBy:     actor,
			}); txErr != nil {
				return txErr
			}

			// Legacy creation-time snapshot: both sides carry the vendor
			// balance including the new due, not the due before/after.
			// Only the payment recorder writes true snapshots.
			snapshot := vendor.Balance.Add(due)
			if payErr := s.paymentRepo.Create(txCtx, &model.PaymentHistory{
				PurchaseID:    &purchase.ID,
				Amount:        paid,
				PaymentMode:   paymentMode,
				PaymentDate:   purchaseDate,
				Notes:         req.Notes,
				BalanceBefore: snapshot,
				BalanceAfter:  snapshot,
				CreatedBy:     actor,
			}); payErr != nil {
				return payErr
			}
		}

		return nil
	})
	if err != nil {
		return PurchaseResponse{}, wrapInternal(err, "failed to create purchase")
	}

	reloaded, err := s.purchaseRepo.FindByIDWithItems(ctx, purchase.ID)
	if err != nil {
		return PurchaseResponse{}, wrapInternal(err, "failed to reload purchase")
	}
	s.notifyItems(reloaded.Items)

	return toPurchaseResponse(*reloaded), nil
}

func (s *purchaseService) notifyItems(items []model.PurchaseItem) {
	for _, item := range items {
		if item.Product != nil {
			notifyStock(s.notifier, item.ProductID, item.Product.Name,
				item.Product.StockQuantity, item.Product.MinimumStockLevel)
		}
	}
}

func (s *purchaseService) GetPurchase(ctx context.Context, id string) (PurchaseResponse, error) {
	purchaseID, err := uuid.Parse(id)
	if err != nil {
		return PurchaseResponse{}, apperror.Validation("invalid purchase id: %s", id)
	}

	purchase, err := s.purchaseRepo.FindByIDWithItems(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PurchaseResponse{}, apperror.NotFound("purchase")
		}
		return PurchaseResponse{}, err
	}

	return toPurchaseResponse(*purchase), nil
}

func (s *purchaseService) ListPurchases(ctx context.Context, filter PurchaseListFilter) ([]PurchaseResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.PurchaseListFilter{
		InvoiceNo: filter.InvoiceNo,
		DueOnly:   filter.DueOnly,
		Page:      filter.Page,
		Limit:     filter.Limit,
	}
	if filter.VendorID != "" {
		vendorID, err := uuid.Parse(filter.VendorID)
		if err != nil {
			return nil, 0, apperror.Validation("invalid vendor_id: %s", filter.VendorID)
		}
		repoFilter.VendorID = &vendorID
	}

	purchases, totalCount, err := s.purchaseRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, wrapInternal(err, "failed to fetch purchases")
	}

	result := make([]PurchaseResponse, 0, len(purchases))
	for _, purchase := range purchases {
		result = append(result, toPurchaseResponse(purchase))
	}
	return result, totalCount, nil
}

// --- Mapping ---

func toPurchaseResponse(purchase model.Purchase) PurchaseResponse {
	resp := PurchaseResponse{
		ID:               purchase.ID.String(),
		InvoiceNo:        purchase.InvoiceNo,
		VendorID:         purchase.VendorID.String(),
		PurchaseDate:     purchase.PurchaseDate.Format("2006-01-02"),
		TotalAmount:      purchase.TotalAmount.StringFixed(4),
		PaidAmount:       purchase.PaidAmount.StringFixed(4),
		DueAmount:        purchase.DueAmount.StringFixed(4),
		Notes:            purchase.Notes,
		IsOpeningBalance: purchase.IsOpeningBalance,
		CreatedAt:        purchase.CreatedAt.Format(time.RFC3339),
	}
	if purchase.Vendor != nil {
		resp.VendorName = purchase.Vendor.Name
	}
	resp.Items = make([]InvoiceItemResponse, 0, len(purchase.Items))
	for _, item := range purchase.Items {
		line := InvoiceItemResponse{
			ProductID:  item.ProductID.String(),
			Quantity:   item.Quantity.String(),
			UnitPrice:  item.UnitPrice.StringFixed(4),
			TotalPrice: item.TotalPrice.StringFixed(4),
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}
