package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleListFilter struct {
	CustomerID *uuid.UUID
	InvoiceNo  string
	WalkInOnly bool
	DueOnly    bool
	Page       int
	Limit      int
}

type SaleRepository interface {
	Create(ctx context.Context, sale *model.Sale) error
	CreateItem(ctx context.Context, item *model.SaleItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, filter SaleListFilter) ([]model.Sale, int64, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Sale, error)
	ApplyPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error)
}

type saleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *model.Sale) error {
	return GetDB(ctx, r.db).Create(sale).Error
}

func (r *saleRepository) CreateItem(ctx context.Context, item *model.SaleItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *saleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	if err := GetDB(ctx, r.db).First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	if err := GetDB(ctx, r.db).Preload("Items").Preload("Items.Product").Preload("Customer").
		First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepository) List(ctx context.Context, filter SaleListFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		if filter.CustomerID != nil {
			q = q.Where("customer_id = ?", *filter.CustomerID)
		}
		if filter.InvoiceNo != "" {
			q = q.Where("invoice_no ILIKE ?", "%"+filter.InvoiceNo+"%")
		}
		if filter.WalkInOnly {
			q = q.Where("is_walk_in = ?", true)
		}
		if filter.DueOnly {
			q = q.Where("due_amount > 0")
		}
		return q
	}

	if err := apply(db.Model(&model.Sale{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := apply(db.Preload("Customer")).
		Order("sale_date desc, created_at desc").Offset(offset).Limit(filter.Limit).
		Find(&sales).Error; err != nil {
		return nil, 0, err
	}

	return sales, total, nil
}

func (r *saleRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Sale, error) {
	var sales []model.Sale
	if err := GetDB(ctx, r.db).Where("customer_id = ?", customerID).
		Order("sale_date asc, created_at asc").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// ApplyPayment is the guarded due-amount update; see
// PurchaseRepository.ApplyPayment for the race it closes.
func (r *saleRepository) ApplyPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.Sale{}).
		Where("id = ? AND due_amount >= ?", id, amount).
		Updates(map[string]interface{}{
			"paid_amount": gorm.Expr("paid_amount + ?", amount),
			"due_amount":  gorm.Expr("due_amount - ?", amount),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
