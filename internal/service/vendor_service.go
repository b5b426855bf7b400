package service

import (
	"context"
	"errors"
	"time"

	"backend/internal/apperror"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateVendorRequest struct {
	Name           string `json:"name" binding:"required"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	OpeningBalance string `json:"opening_balance"`
}

type UpdatePartyRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	IsActive *bool  `json:"is_active"`
}

type PartyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Balance   string `json:"balance"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// StatementRow is one invoice line in a party statement, oldest first.
type StatementRow struct {
	InvoiceID   string `json:"invoice_id"`
	InvoiceNo   string `json:"invoice_no"`
	Date        string `json:"date"`
	TotalAmount string `json:"total_amount"`
	PaidAmount  string `json:"paid_amount"`
	DueAmount   string `json:"due_amount"`
	IsOpening   bool   `json:"is_opening_balance"`
}

type PartyStatement struct {
	Party    PartyResponse  `json:"party"`
	Invoices []StatementRow `json:"invoices"`
}

// --- Interface ---

type VendorService interface {
	CreateVendor(ctx context.Context, actorID string, req CreateVendorRequest) (PartyResponse, error)
	UpdateVendor(ctx context.Context, id string, req UpdatePartyRequest) (PartyResponse, error)
	DeactivateVendor(ctx context.Context, id string) error
	GetVendor(ctx context.Context, id string) (PartyResponse, error)
	ListVendors(ctx context.Context, page, limit int, search string) ([]PartyResponse, int64, error)
	VendorStatement(ctx context.Context, id string) (PartyStatement, error)
}

type vendorService struct {
	vendorRepo   repository.VendorRepository
	purchaseRepo repository.PurchaseRepository
	txManager    repository.TransactionManager
}

func NewVendorService(
	vendorRepo repository.VendorRepository,
	purchaseRepo repository.PurchaseRepository,
	txManager repository.TransactionManager,
) VendorService {
	return &vendorService{
		vendorRepo:   vendorRepo,
		purchaseRepo: purchaseRepo,
		txManager:    txManager,
	}
}

// --- Implementation ---

// CreateVendor registers a supplier. A non-zero opening balance is carried
// by an OB-prefixed purchase invoice with no items, created in the same
// transaction, so the balance-mirrors-dues invariant holds from day one
// and later payments settle the opening debt like any other invoice.
func (s *vendorService) CreateVendor(ctx context.Context, actorID string, req CreateVendorRequest) (PartyResponse, error) {
	opening, err := parseAmount("opening_balance", req.OpeningBalance)
	if err != nil {
		return PartyResponse{}, err
	}

	actor := parseActor(actorID)
	vendor := model.Vendor{
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
		Balance:  opening,
		IsActive: true,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.vendorRepo.Create(txCtx, &vendor); createErr != nil {
			return createErr
		}
		if !opening.IsPositive() {
			return nil
		}
		return s.purchaseRepo.Create(txCtx, &model.Purchase{
			InvoiceNo:        generateInvoiceNo(invoicePrefixOpening),
			VendorID:         vendor.ID,
			PurchaseDate:     time.Now(),
			TotalAmount:      opening,
			DueAmount:        opening,
			Notes:            "opening balance",
			IsOpeningBalance: true,
			CreatedBy:        actor,
		})
	})
	if err != nil {
		return PartyResponse{}, wrapInternal(err, "failed to create vendor")
	}

	return toVendorResponse(vendor), nil
}

func (s *vendorService) UpdateVendor(ctx context.Context, id string, req UpdatePartyRequest) (PartyResponse, error) {
	vendorID, err := uuid.Parse(id)
	if err != nil {
		return PartyResponse{}, apperror.Validation("invalid vendor id: %s", id)
	}
	vendor, err := s.vendorRepo.FindByID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PartyResponse{}, apperror.NotFound("vendor")
		}
		return PartyResponse{}, wrapInternal(err, "failed to fetch vendor")
	}

	if req.Name != "" {
		vendor.Name = req.Name
	}
	if req.Phone != "" {
		vendor.Phone = req.Phone
	}
	if req.Address != "" {
		vendor.Address = req.Address
	}
	if req.IsActive != nil {
		vendor.IsActive = *req.IsActive
	}

	if err := s.vendorRepo.Update(ctx, vendor); err != nil {
		return PartyResponse{}, wrapInternal(err, "failed to update vendor")
	}
	return toVendorResponse(*vendor), nil
}

func (s *vendorService) DeactivateVendor(ctx context.Context, id string) error {
	vendorID, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid vendor id: %s", id)
	}
	if _, err := s.vendorRepo.FindByID(ctx, vendorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("vendor")
		}
		return wrapInternal(err, "failed to fetch vendor")
	}
	if err := s.vendorRepo.Deactivate(ctx, vendorID); err != nil {
		return wrapInternal(err, "failed to deactivate vendor")
	}
	return nil
}

func (s *vendorService) GetVendor(ctx context.Context, id string) (PartyResponse, error) {
	vendorID, err := uuid.Parse(id)
	if err != nil {
		return PartyResponse{}, apperror.Validation("invalid vendor id: %s", id)
	}
	vendor, err := s.vendorRepo.FindByID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PartyResponse{}, apperror.NotFound("vendor")
		}
		return PartyResponse{}, wrapInternal(err, "failed to fetch vendor")
	}
	return toVendorResponse(*vendor), nil
}

func (s *vendorService) ListVendors(ctx context.Context, page, limit int, search string) ([]PartyResponse, int64, error) {
	vendors, total, err := s.vendorRepo.List(ctx, page, limit, search)
	if err != nil {
		return nil, 0, wrapInternal(err, "failed to list vendors")
	}
	result := make([]PartyResponse, 0, len(vendors))
	for _, vendor := range vendors {
		result = append(result, toVendorResponse(vendor))
	}
	return result, total, nil
}

// VendorStatement returns the vendor plus all their invoices oldest first,
// opening-balance invoice included.
func (s *vendorService) VendorStatement(ctx context.Context, id string) (PartyStatement, error) {
	vendorID, err := uuid.Parse(id)
	if err != nil {
		return PartyStatement{}, apperror.Validation("invalid vendor id: %s", id)
	}
	vendor, err := s.vendorRepo.FindByID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PartyStatement{}, apperror.NotFound("vendor")
		}
		return PartyStatement{}, wrapInternal(err, "failed to fetch vendor")
	}

	purchases, err := s.purchaseRepo.ListByVendor(ctx, vendorID)
	if err != nil {
		return PartyStatement{}, wrapInternal(err, "failed to fetch vendor invoices")
	}

	rows := make([]StatementRow, 0, len(purchases))
	for _, purchase := range purchases {
		rows = append(rows, StatementRow{
			InvoiceID:   purchase.ID.String(),
			InvoiceNo:   purchase.InvoiceNo,
			Date:        purchase.PurchaseDate.Format("2006-01-02"),
			TotalAmount: purchase.TotalAmount.StringFixed(4),
			PaidAmount:  purchase.PaidAmount.StringFixed(4),
			DueAmount:   purchase.DueAmount.StringFixed(4),
			IsOpening:   purchase.IsOpeningBalance,
		})
	}

	return PartyStatement{Party: toVendorResponse(*vendor), Invoices: rows}, nil
}

// --- Mapping ---

func toVendorResponse(vendor model.Vendor) PartyResponse {
	return PartyResponse{
		ID:        vendor.ID.String(),
		Name:      vendor.Name,
		Phone:     vendor.Phone,
		Address:   vendor.Address,
		Balance:   vendor.Balance.StringFixed(4),
		IsActive:  vendor.IsActive,
		CreatedAt: vendor.CreatedAt.Format(timeFormat),
		UpdatedAt: vendor.UpdatedAt.Format(timeFormat),
	}
}
