package service

import (
	"context"
	"errors"

	"backend/internal/apperror"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateProductRequest struct {
	SKU               string `json:"sku" binding:"required"`
	Name              string `json:"name" binding:"required"`
	Unit              string `json:"unit" binding:"required"`
	OpeningStock      string `json:"opening_stock"`
	MinimumStockLevel string `json:"minimum_stock_level"`
	PurchaseRate      string `json:"purchase_rate"`
	SaleRate          string `json:"sale_rate"`
}

type UpdateProductRequest struct {
	Name              string `json:"name"`
	Unit              string `json:"unit"`
	MinimumStockLevel string `json:"minimum_stock_level"`
	PurchaseRate      string `json:"purchase_rate"`
	SaleRate          string `json:"sale_rate"`
	IsActive          *bool  `json:"is_active"`
}

type AdjustStockRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Direction string `json:"direction" binding:"required"` // IN or OUT
	Quantity  string `json:"quantity" binding:"required"`
	Notes     string `json:"notes" binding:"required"`
}

type ProductResponse struct {
	ID                string `json:"id"`
	SKU               string `json:"sku"`
	Name              string `json:"name"`
	Unit              string `json:"unit"`
	StockQuantity     string `json:"stock_quantity"`
	MinimumStockLevel string `json:"minimum_stock_level"`
	PurchaseRate      string `json:"purchase_rate"`
	SaleRate          string `json:"sale_rate"`
	IsActive          bool   `json:"is_active"`
	LowStock          bool   `json:"low_stock"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

type StockMovementResponse struct {
	ID            string  `json:"id"`
	ProductID     string  `json:"product_id"`
	MovementType  string  `json:"movement_type"`
	Quantity      string  `json:"quantity"`
	BalanceBefore string  `json:"balance_before"`
	BalanceAfter  string  `json:"balance_after"`
	ReferenceType string  `json:"reference_type"`
	ReferenceID   *string `json:"reference_id"`
	Notes         string  `json:"notes"`
	CreatedAt     string  `json:"created_at"`
}

// --- Interface ---

type InventoryService interface {
	CreateProduct(ctx context.Context, actorID string, req CreateProductRequest) (ProductResponse, error)
	UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (ProductResponse, error)
	DeactivateProduct(ctx context.Context, id string) error
	GetProduct(ctx context.Context, id string) (ProductResponse, error)
	ListProducts(ctx context.Context, page, limit int, search string, activeOnly bool) ([]ProductResponse, int64, error)
	ListLowStock(ctx context.Context) ([]ProductResponse, error)
	AdjustStock(ctx context.Context, actorID string, req AdjustStockRequest) (StockMovementResponse, error)
	ListMovements(ctx context.Context, productID string, page, limit int) ([]StockMovementResponse, int64, error)
}

type inventoryService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	txManager    repository.TransactionManager
	notifier     StockNotifier
}

func NewInventoryService(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	txManager repository.TransactionManager,
	notifier StockNotifier,
) InventoryService {
	return &inventoryService{
		productRepo:  productRepo,
		movementRepo: movementRepo,
		txManager:    txManager,
		notifier:     notifier,
	}
}

// --- Implementation ---

// CreateProduct registers a product. A non-zero opening stock is recorded
// as an ADJUSTMENT_IN movement so the audit trail starts at zero like
// every other product.
func (s *inventoryService) CreateProduct(ctx context.Context, actorID string, req CreateProductRequest) (ProductResponse, error) {
	if !model.ValidUnit(req.Unit) {
		return ProductResponse{}, apperror.Validation("invalid unit: %s", req.Unit)
	}
	opening, err := parseAmount("opening_stock", req.OpeningStock)
	if err != nil {
		return ProductResponse{}, err
	}
	minimum, err := parseAmount("minimum_stock_level", req.MinimumStockLevel)
	if err != nil {
		return ProductResponse{}, err
	}
	purchaseRate, err := parseAmount("purchase_rate", req.PurchaseRate)
	if err != nil {
		return ProductResponse{}, err
	}
	saleRate, err := parseAmount("sale_rate", req.SaleRate)
	if err != nil {
		return ProductResponse{}, err
	}

	if existing, findErr := s.productRepo.FindBySKU(ctx, req.SKU); findErr == nil && existing != nil {
		return ProductResponse{}, apperror.New(apperror.CodeConflict, "product with sku %s already exists", req.SKU)
	} else if findErr != nil && !errors.Is(findErr, gorm.ErrRecordNotFound) {
		return ProductResponse{}, wrapInternal(findErr, "failed to check sku")
	}

	actor := parseActor(actorID)
	product := model.Product{
		SKU:               req.SKU,
		Name:              req.Name,
		Unit:              req.Unit,
		MinimumStockLevel: minimum,
		PurchaseRate:      purchaseRate,
		SaleRate:          saleRate,
		IsActive:          true,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.productRepo.Create(txCtx, &product); createErr != nil {
			return createErr
		}
		if opening.IsPositive() {
			movement, adjErr := applyStockDelta(txCtx, s.productRepo, s.movementRepo, stockDelta{
				ProductID:     product.ID,
				Quantity:      opening,
				MovementType:  model.MovementAdjustmentIn,
				ReferenceType: model.StockRefAdjustment,
				Notes:         "opening stock",
				ActorID:       actor,
			})
			if adjErr != nil {
				return adjErr
			}
			product.StockQuantity = movement.BalanceAfter
		}
		return nil
	})
	if err != nil {
		return ProductResponse{}, wrapInternal(err, "failed to create product")
	}

	return toProductResponse(product), nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (ProductResponse, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return ProductResponse{}, apperror.Validation("invalid product id: %s", id)
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductResponse{}, apperror.NotFound("product")
		}
		return ProductResponse{}, wrapInternal(err, "failed to fetch product")
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Unit != "" {
		if !model.ValidUnit(req.Unit) {
			return ProductResponse{}, apperror.Validation("invalid unit: %s", req.Unit)
		}
		product.Unit = req.Unit
	}
	if req.MinimumStockLevel != "" {
		minimum, parseErr := parseAmount("minimum_stock_level", req.MinimumStockLevel)
		if parseErr != nil {
			return ProductResponse{}, parseErr
		}
		product.MinimumStockLevel = minimum
	}
	if req.PurchaseRate != "" {
		rate, parseErr := parseAmount("purchase_rate", req.PurchaseRate)
		if parseErr != nil {
			return ProductResponse{}, parseErr
		}
		product.PurchaseRate = rate
	}
	if req.SaleRate != "" {
		rate, parseErr := parseAmount("sale_rate", req.SaleRate)
		if parseErr != nil {
			return ProductResponse{}, parseErr
		}
		product.SaleRate = rate
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return ProductResponse{}, wrapInternal(err, "failed to update product")
	}
	return toProductResponse(*product), nil
}

func (s *inventoryService) DeactivateProduct(ctx context.Context, id string) error {
	productID, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid product id: %s", id)
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("product")
		}
		return wrapInternal(err, "failed to fetch product")
	}
	if err := s.productRepo.Deactivate(ctx, productID); err != nil {
		return wrapInternal(err, "failed to deactivate product")
	}
	return nil
}

func (s *inventoryService) GetProduct(ctx context.Context, id string) (ProductResponse, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return ProductResponse{}, apperror.Validation("invalid product id: %s", id)
	}
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductResponse{}, apperror.NotFound("product")
		}
		return ProductResponse{}, wrapInternal(err, "failed to fetch product")
	}
	return toProductResponse(*product), nil
}

func (s *inventoryService) ListProducts(ctx context.Context, page, limit int, search string, activeOnly bool) ([]ProductResponse, int64, error) {
	products, total, err := s.productRepo.List(ctx, page, limit, search, activeOnly)
	if err != nil {
		return nil, 0, wrapInternal(err, "failed to list products")
	}
	result := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		result = append(result, toProductResponse(product))
	}
	return result, total, nil
}

func (s *inventoryService) ListLowStock(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.ListBelowMinimum(ctx)
	if err != nil {
		return nil, wrapInternal(err, "failed to list low stock products")
	}
	result := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		result = append(result, toProductResponse(product))
	}
	return result, nil
}

// AdjustStock applies a manual correction outside the invoice flow
// (damage, shrinkage, recount). OUT adjustments can never drive stock
// negative regardless of the negative-stock setting.
func (s *inventoryService) AdjustStock(ctx context.Context, actorID string, req AdjustStockRequest) (StockMovementResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return StockMovementResponse{}, apperror.Validation("invalid product_id: %s", req.ProductID)
	}
	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil || !quantity.IsPositive() {
		return StockMovementResponse{}, apperror.Validation("quantity must be a positive number")
	}
	if req.Notes == "" {
		return StockMovementResponse{}, apperror.Validation("notes are required for stock adjustments")
	}

	var movementType string
	switch req.Direction {
	case "IN":
		movementType = model.MovementAdjustmentIn
	case "OUT":
		movementType = model.MovementAdjustmentOut
	default:
		return StockMovementResponse{}, apperror.Validation("direction must be IN or OUT")
	}

	var movement *model.StockMovement
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var adjErr error
		movement, adjErr = applyStockDelta(txCtx, s.productRepo, s.movementRepo, stockDelta{
			ProductID:     productID,
			Quantity:      quantity,
			MovementType:  movementType,
			ReferenceType: model.StockRefAdjustment,
			Notes:         req.Notes,
			ActorID:       parseActor(actorID),
		})
		return adjErr
	})
	if err != nil {
		return StockMovementResponse{}, wrapInternal(err, "failed to adjust stock")
	}

	if product, fetchErr := s.productRepo.FindByID(ctx, productID); fetchErr == nil {
		notifyStock(s.notifier, product.ID, product.Name, product.StockQuantity, product.MinimumStockLevel)
	}

	return toMovementResponse(*movement), nil
}

func (s *inventoryService) ListMovements(ctx context.Context, productID string, page, limit int) ([]StockMovementResponse, int64, error) {
	id, err := uuid.Parse(productID)
	if err != nil {
		return nil, 0, apperror.Validation("invalid product id: %s", productID)
	}
	movements, total, err := s.movementRepo.ListByProduct(ctx, id, page, limit)
	if err != nil {
		return nil, 0, wrapInternal(err, "failed to list stock movements")
	}
	result := make([]StockMovementResponse, 0, len(movements))
	for _, movement := range movements {
		result = append(result, toMovementResponse(movement))
	}
	return result, total, nil
}

// --- Mapping ---

func toProductResponse(product model.Product) ProductResponse {
	return ProductResponse{
		ID:                product.ID.String(),
		SKU:               product.SKU,
		Name:              product.Name,
		Unit:              product.Unit,
		StockQuantity:     product.StockQuantity.StringFixed(4),
		MinimumStockLevel: product.MinimumStockLevel.StringFixed(4),
		PurchaseRate:      product.PurchaseRate.StringFixed(4),
		SaleRate:          product.SaleRate.StringFixed(4),
		IsActive:          product.IsActive,
		LowStock:          product.StockQuantity.LessThanOrEqual(product.MinimumStockLevel),
		CreatedAt:         product.CreatedAt.Format(timeFormat),
		UpdatedAt:         product.UpdatedAt.Format(timeFormat),
	}
}

func toMovementResponse(movement model.StockMovement) StockMovementResponse {
	resp := StockMovementResponse{
		ID:            movement.ID.String(),
		ProductID:     movement.ProductID.String(),
		MovementType:  movement.MovementType,
		Quantity:      movement.Quantity.StringFixed(4),
		BalanceBefore: movement.BalanceBefore.StringFixed(4),
		BalanceAfter:  movement.BalanceAfter.StringFixed(4),
		ReferenceType: movement.ReferenceType,
		Notes:         movement.Notes,
		CreatedAt:     movement.CreatedAt.Format(timeFormat),
	}
	if movement.ReferenceID != nil {
		id := movement.ReferenceID.String()
		resp.ReferenceID = &id
	}
	return resp
}
