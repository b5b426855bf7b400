package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"backend/internal/apperror"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateSaleRequest struct {
	CustomerID        string               `json:"customer_id"`
	WalkInName        string               `json:"walk_in_name"`
	SaleDate          string               `json:"sale_date"` // YYYY-MM-DD, defaults to today
	Items             []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	ReceivedAmount    string               `json:"received_amount"`
	PaymentMode       string               `json:"payment_mode"`
	AdditionalCharges string               `json:"additional_charges"`
	Notes             string               `json:"notes"`
}

type SaleResponse struct {
	ID                string                `json:"id"`
	InvoiceNo         string                `json:"invoice_no"`
	CustomerID        *string               `json:"customer_id"`
	CustomerName      string                `json:"customer_name"`
	WalkInName        string                `json:"walk_in_name"`
	SaleDate          string                `json:"sale_date"`
	Items             []InvoiceItemResponse `json:"items"`
	Subtotal          string                `json:"subtotal"`
	AdditionalCharges string                `json:"additional_charges"`
	TotalAmount       string                `json:"total_amount"`
	PaidAmount        string                `json:"paid_amount"`
	DueAmount         string                `json:"due_amount"`
	Notes             string                `json:"notes"`
	IsWalkIn          bool                  `json:"is_walk_in"`
	IsOpeningBalance  bool                  `json:"is_opening_balance"`
	CreatedAt         string                `json:"created_at"`
}

type SaleListFilter struct {
	CustomerID string
	InvoiceNo  string
	WalkInOnly bool
	DueOnly    bool
	Page       int
	Limit      int
}

// --- Interface ---

type SaleService interface {
	CreateSale(ctx context.Context, actorID string, req CreateSaleRequest) (SaleResponse, error)
	GetSale(ctx context.Context, id string) (SaleResponse, error)
	ListSales(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error)
}

type saleService struct {
	saleRepo     repository.SaleRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	paymentRepo  repository.PaymentHistoryRepository
	txRepo       repository.TransactionRepository
	settingsRepo repository.SettingsRepository
	txManager    repository.TransactionManager
	notifier     StockNotifier
}

func NewSaleService(
	saleRepo repository.SaleRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	paymentRepo repository.PaymentHistoryRepository,
	txRepo repository.TransactionRepository,
	settingsRepo repository.SettingsRepository,
	txManager repository.TransactionManager,
	notifier StockNotifier,
) SaleService {
	return &saleService{
		saleRepo:     saleRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		paymentRepo:  paymentRepo,
		txRepo:       txRepo,
		settingsRepo: settingsRepo,
		txManager:    txManager,
		notifier:     notifier,
	}
}

// --- Implementation ---

// CreateSale records a customer invoice. Stock sufficiency is verified for
// every line before anything is written, so a failing line never leaves
// other lines' stock decremented. Walk-in sales must be fully paid at
// creation. All writes happen in one transaction.
func (s *saleService) CreateSale(ctx context.Context, actorID string, req CreateSaleRequest) (SaleResponse, error) {
	hasCustomer := req.CustomerID != ""
	walkInName := strings.TrimSpace(req.WalkInName)
	if hasCustomer == (walkInName != "") {
		return SaleResponse{}, apperror.Validation("provide exactly one of customer_id or walk_in_name")
	}

	var customerID uuid.UUID
	if hasCustomer {
		parsed, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return SaleResponse{}, apperror.Validation("invalid customer_id: %s", req.CustomerID)
		}
		customerID = parsed
	}

	items, productIDs, subtotal, err := parseInvoiceItems(req.Items)
	if err != nil {
		return SaleResponse{}, err
	}

	charges, err := parseAmount("additional_charges", req.AdditionalCharges)
	if err != nil {
		return SaleResponse{}, err
	}
	received, err := parseAmount("received_amount", req.ReceivedAmount)
	if err != nil {
		return SaleResponse{}, err
	}

	paymentMode := req.PaymentMode
	if paymentMode == "" {
		paymentMode = model.PaymentModeCash
	}
	if !model.ValidPaymentMode(paymentMode) {
		return SaleResponse{}, apperror.Validation("invalid payment_mode: %s", paymentMode)
	}

	saleDate, err := parseDate("sale_date", req.SaleDate)
	if err != nil {
		return SaleResponse{}, err
	}

	total := subtotal.Add(charges)
	if received.GreaterThan(total) {
		return SaleResponse{}, apperror.Validation("received_amount %s exceeds total amount %s",
			received.String(), total.String())
	}
	due := total.Sub(received)

	if !hasCustomer && !due.IsZero() {
		return SaleResponse{}, apperror.New(apperror.CodeWalkInNotFullyPaid,
			"walk-in sale must be fully paid: total %s, received %s", total.String(), received.String())
	}

	// Read once per operation and passed down; the engine never fetches
	// settings mid-transaction.
	allowNegative := false
	if settings, settingsErr := s.settingsRepo.Get(ctx); settingsErr == nil {
		allowNegative = settings.AllowNegativeStock
	}

	actor := parseActor(actorID)

	var sale model.Sale
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var customerBalance decimal.Decimal
		if hasCustomer {
			customer, findErr := s.customerRepo.FindByID(txCtx, customerID)
			if findErr != nil {
				if errors.Is(findErr, gorm.ErrRecordNotFound) {
					return apperror.NotFound("customer")
				}
				return findErr
			}
			if !customer.IsActive {
				return apperror.Validation("customer %s is inactive", customer.Name)
			}
			customerBalance = customer.Balance
		}

		products, mapErr := fetchProductMap(txCtx, s.productRepo, productIDs)
		if mapErr != nil {
			return mapErr
		}

		// Whole-invoice sufficiency check before any write. This check is
		// unconditional: over-selling is blocked at creation even when the
		// negative-stock setting is on.
		requested := make(map[uuid.UUID]decimal.Decimal, len(products))
		for _, item := range items {
			requested[item.productID] = requested[item.productID].Add(item.quantity)
		}
		for pid, quantity := range requested {
			product := products[pid]
			if product.StockQuantity.LessThan(quantity) {
				return apperror.New(apperror.CodeInsufficientStock,
					"insufficient stock for product %s (available: %s, requested: %s)",
					product.Name, product.StockQuantity.String(), quantity.String())
			}
		}

		sale = model.Sale{
			InvoiceNo:         generateInvoiceNo(invoicePrefixSale),
			SaleDate:          saleDate,
			WalkInName:        walkInName,
			Subtotal:          subtotal,
			AdditionalCharges: charges,
			TotalAmount:       total,
			PaidAmount:        received,
			DueAmount:         due,
			Notes:             req.Notes,
			IsWalkIn:          !hasCustomer,
			CreatedBy:         actor,
		}
		if hasCustomer {
			sale.CustomerID = &customerID
		}
		if createErr := s.saleRepo.Create(txCtx, &sale); createErr != nil {
			return createErr
		}

		for _, item := range items {
			if _, deltaErr := applyStockDelta(txCtx, s.productRepo, s.movementRepo, stockDelta{
				ProductID:     item.productID,
				Quantity:      item.quantity,
				MovementType:  model.MovementSale,
				ReferenceType: model.StockRefSale,
				ReferenceID:   &sale.ID,
				Notes:         "sale " + sale.InvoiceNo,
				ActorID:       actor,
				AllowNegative: allowNegative,
			}); deltaErr != nil {
				return deltaErr
			}

			if itemErr := s.saleRepo.CreateItem(txCtx, &model.SaleItem{
				SaleID:     sale.ID,
				ProductID:  item.productID,
				Quantity:   item.quantity,
				UnitPrice:  item.unitPrice,
				TotalPrice: item.totalPrice,
			}); itemErr != nil {
				return itemErr
			}
		}

		if hasCustomer {
			if balErr := s.customerRepo.IncrementBalance(txCtx, customerID, due); balErr != nil {
				return balErr
			}
		}

		if received.IsPositive() {
			tx := &model.Transaction{
				TxType:        model.TxPaymentIn,
				Amount:        received,
				PaymentMode:   paymentMode,
				ReferenceType: model.TxRefSale,
				ReferenceID:   sale.ID,
				Notes:         req.Notes,
				CreatedBy:     actor,
			}
			if hasCustomer {
				tx.PartyKind = model.PartyCustomer
				tx.PartyID = &customerID
			}
			if txErr := s.txRepo.Create(txCtx, tx); txErr != nil {
				return txErr
			}

			// Legacy creation-time snapshots: a registered customer's row
			// carries the new party balance on both sides; a walk-in row
			// records total down to zero. True due before/after is only
			// written by the payment recorder.
			before, after := total, decimal.Zero
			if hasCustomer {
				newBalance := customerBalance.Add(due)
				before, after = newBalance, newBalance
			}
			if payErr := s.paymentRepo.Create(txCtx, &model.PaymentHistory{
				SaleID:        &sale.ID,
				Amount:        received,
				PaymentMode:   paymentMode,
				PaymentDate:   saleDate,
				Notes:         req.Notes,
				BalanceBefore: before,
				BalanceAfter:  after,
				CreatedBy:     actor,
			}); payErr != nil {
				return payErr
			}
		}

		return nil
	})
	if err != nil {
		return SaleResponse{}, wrapInternal(err, "failed to create sale")
	}

	reloaded, err := s.saleRepo.FindByIDWithItems(ctx, sale.ID)
	if err != nil {
		return SaleResponse{}, wrapInternal(err, "failed to reload sale")
	}
	for _, item := range reloaded.Items {
		if item.Product != nil {
			notifyStock(s.notifier, item.ProductID, item.Product.Name,
				item.Product.StockQuantity, item.Product.MinimumStockLevel)
		}
	}

	return toSaleResponse(*reloaded), nil
}

func (s *saleService) GetSale(ctx context.Context, id string) (SaleResponse, error) {
	saleID, err := uuid.Parse(id)
	if err != nil {
		return SaleResponse{}, apperror.Validation("invalid sale id: %s", id)
	}

	sale, err := s.saleRepo.FindByIDWithItems(ctx, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SaleResponse{}, apperror.NotFound("sale")
		}
		return SaleResponse{}, err
	}

	return toSaleResponse(*sale), nil
}

func (s *saleService) ListSales(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.SaleListFilter{
		InvoiceNo:  filter.InvoiceNo,
		WalkInOnly: filter.WalkInOnly,
		DueOnly:    filter.DueOnly,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}
	if filter.CustomerID != "" {
		customerID, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			return nil, 0, apperror.Validation("invalid customer_id: %s", filter.CustomerID)
		}
		repoFilter.CustomerID = &customerID
	}

	sales, totalCount, err := s.saleRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, wrapInternal(err, "failed to fetch sales")
	}

	result := make([]SaleResponse, 0, len(sales))
	for _, sale := range sales {
		result = append(result, toSaleResponse(sale))
	}
	return result, totalCount, nil
}

// --- Mapping ---

func toSaleResponse(sale model.Sale) SaleResponse {
	resp := SaleResponse{
		ID:                sale.ID.String(),
		InvoiceNo:         sale.InvoiceNo,
		WalkInName:        sale.WalkInName,
		SaleDate:          sale.SaleDate.Format("2006-01-02"),
		Subtotal:          sale.Subtotal.StringFixed(4),
		AdditionalCharges: sale.AdditionalCharges.StringFixed(4),
		TotalAmount:       sale.TotalAmount.StringFixed(4),
		PaidAmount:        sale.PaidAmount.StringFixed(4),
		DueAmount:         sale.DueAmount.StringFixed(4),
		Notes:             sale.Notes,
		IsWalkIn:          sale.IsWalkIn,
		IsOpeningBalance:  sale.IsOpeningBalance,
		CreatedAt:         sale.CreatedAt.Format(time.RFC3339),
	}
	if sale.CustomerID != nil {
		id := sale.CustomerID.String()
		resp.CustomerID = &id
	}
	if sale.Customer != nil {
		resp.CustomerName = sale.Customer.Name
	}
	resp.Items = make([]InvoiceItemResponse, 0, len(sale.Items))
	for _, item := range sale.Items {
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
