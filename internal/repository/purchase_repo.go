package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PurchaseListFilter struct {
	VendorID  *uuid.UUID
	InvoiceNo string
	DueOnly   bool
	Page      int
	Limit     int
}

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *model.Purchase) error
	CreateItem(ctx context.Context, item *model.PurchaseItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	List(ctx context.Context, filter PurchaseListFilter) ([]model.Purchase, int64, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Purchase, error)
	ApplyPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error)
}

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *model.Purchase) error {
	return GetDB(ctx, r.db).Create(purchase).Error
}

func (r *purchaseRepository) CreateItem(ctx context.Context, item *model.PurchaseItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *purchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := GetDB(ctx, r.db).First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := GetDB(ctx, r.db).Preload("Items").Preload("Items.Product").Preload("Vendor").
		First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) List(ctx context.Context, filter PurchaseListFilter) ([]model.Purchase, int64, error) {
	var purchases []model.Purchase
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		if filter.VendorID != nil {
			q = q.Where("vendor_id = ?", *filter.VendorID)
		}
		if filter.InvoiceNo != "" {
			q = q.Where("invoice_no ILIKE ?", "%"+filter.InvoiceNo+"%")
		}
		if filter.DueOnly {
			q = q.Where("due_amount > 0")
		}
		return q
	}

	if err := apply(db.Model(&model.Purchase{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := apply(db.Preload("Vendor")).
		Order("purchase_date desc, created_at desc").Offset(offset).Limit(filter.Limit).
		Find(&purchases).Error; err != nil {
		return nil, 0, err
	}

	return purchases, total, nil
}

func (r *purchaseRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.Purchase, error) {
	var purchases []model.Purchase
	if err := GetDB(ctx, r.db).Where("vendor_id = ?", vendorID).
		Order("purchase_date asc, created_at asc").Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

// ApplyPayment moves amount from due to paid in one guarded update. The
// WHERE clause on due_amount is the compare-and-swap: of two payments racing
// past the pre-check, only one can match, so their combined amount can never
// exceed the due amount. Returns false when no row matched.
func (r *purchaseRepository) ApplyPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.Purchase{}).
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
