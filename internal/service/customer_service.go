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

type CreateCustomerRequest struct {
	Name           string `json:"name" binding:"required"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	OpeningBalance string `json:"opening_balance"`
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, actorID string, req CreateCustomerRequest) (PartyResponse, error)
	UpdateCustomer(ctx context.Context, id string, req UpdatePartyRequest) (PartyResponse, error)
	DeactivateCustomer(ctx context.Context, id string) error
	GetCustomer(ctx context.Context, id string) (PartyResponse, error)
	ListCustomers(ctx context.Context, page, limit int, search string) ([]PartyResponse, int64, error)
	CustomerStatement(ctx context.Context, id string) (PartyStatement, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
	saleRepo     repository.SaleRepository
	txManager    repository.TransactionManager
}

func NewCustomerService(
	customerRepo repository.CustomerRepository,
	saleRepo repository.SaleRepository,
	txManager repository.TransactionManager,
) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		saleRepo:     saleRepo,
		txManager:    txManager,
	}
}

// CreateCustomer mirrors vendor creation: a non-zero opening balance
// becomes an itemless OB sale invoice in the same transaction, so the
// customer's balance always equals the sum of their invoice dues.
func (s *customerService) CreateCustomer(ctx context.Context, actorID string, req CreateCustomerRequest) (PartyResponse, error) {
	opening, err := parseAmount("opening_balance", req.OpeningBalance)
	if err != nil {
		return PartyResponse{}, err
	}

	actor := parseActor(actorID)
	customer := model.Customer{
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
		Balance:  opening,
		IsActive: true,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.customerRepo.Create(txCtx, &customer); createErr != nil {
			return createErr
		}
		if !opening.IsPositive() {
			return nil
		}
		return s.saleRepo.Create(txCtx, &model.Sale{
			InvoiceNo:        generateInvoiceNo(invoicePrefixOpening),
			CustomerID:       &customer.ID,
			SaleDate:         time.Now(),
			Subtotal:         opening,
			TotalAmount:      opening,
			DueAmount:        opening,
			Notes:            "opening balance",
			IsOpeningBalance: true,
			CreatedBy:        actor,
		})
	})
	if err != nil {
		return PartyResponse{}, wrapInternal(err, "failed to create customer")
	}

	return toCustomerResponse(customer), nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id string, req UpdatePartyRequest) (PartyResponse, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return PartyResponse{}, apperror.Validation("invalid customer id: %s", id)
	}
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PartyResponse{}, apperror.NotFound("customer")
		}
		return PartyResponse{}, wrapInternal(err, "failed to fetch customer")
	}

	if req.Name != "" {
		customer.Name = req.Name
	}
	if req.Phone != "" {
		customer.Phone = req.Phone
	}
	if req.Address != "" {
		customer.Address = req.Address
	}
	if req.IsActive != nil {
		customer.IsActive = *req.IsActive
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return PartyResponse{}, wrapInternal(err, "failed to update customer")
	}
	return toCustomerResponse(*customer), nil
}

func (s *customerService) DeactivateCustomer(ctx context.Context, id string) error {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid customer id: %s", id)
	}
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("customer")
		}
		return wrapInternal(err, "failed to fetch customer")
	}
	if err := s.customerRepo.Deactivate(ctx, customerID); err != nil {
		return wrapInternal(err, "failed to deactivate customer")
	}
	return nil
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (PartyResponse, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return PartyResponse{}, apperror.Validation("invalid customer id: %s", id)
	}
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PartyResponse{}, apperror.NotFound("customer")
		}
		return PartyResponse{}, wrapInternal(err, "failed to fetch customer")
	}
	return toCustomerResponse(*customer), nil
}

func (s *customerService) ListCustomers(ctx context.Context, page, limit int, search string) ([]PartyResponse, int64, error) {
	customers, total, err := s.customerRepo.List(ctx, page, limit, search)
	if err != nil {
		return nil, 0, wrapInternal(err, "failed to list customers")
	}
	result := make([]PartyResponse, 0, len(customers))
	for _, customer := range customers {
		result = append(result, toCustomerResponse(customer))
	}
	return result, total, nil
}

func (s *customerService) CustomerStatement(ctx context.Context, id string) (PartyStatement, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return PartyStatement{}, apperror.Validation("invalid customer id: %s", id)
	}
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PartyStatement{}, apperror.NotFound("customer")
		}
		return PartyStatement{}, wrapInternal(err, "failed to fetch customer")
	}

	sales, err := s.saleRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return PartyStatement{}, wrapInternal(err, "failed to fetch customer invoices")
	}

	rows := make([]StatementRow, 0, len(sales))
	for _, sale := range sales {
		rows = append(rows, StatementRow{
			InvoiceID:   sale.ID.String(),
			InvoiceNo:   sale.InvoiceNo,
			Date:        sale.SaleDate.Format("2006-01-02"),
			TotalAmount: sale.TotalAmount.StringFixed(4),
			PaidAmount:  sale.PaidAmount.StringFixed(4),
			DueAmount:   sale.DueAmount.StringFixed(4),
			IsOpening:   sale.IsOpeningBalance,
		})
	}

	return PartyStatement{Party: toCustomerResponse(*customer), Invoices: rows}, nil
}

func toCustomerResponse(customer model.Customer) PartyResponse {
	return PartyResponse{
		ID:        customer.ID.String(),
		Name:      customer.Name,
		Phone:     customer.Phone,
		Address:   customer.Address,
		Balance:   customer.Balance.StringFixed(4),
		IsActive:  customer.IsActive,
		CreatedAt: customer.CreatedAt.Format(timeFormat),
		UpdatedAt: customer.UpdatedAt.Format(timeFormat),
	}
}
