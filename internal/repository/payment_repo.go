package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentHistoryRepository interface {
	Create(ctx context.Context, payment *model.PaymentHistory) error
	ListForPurchase(ctx context.Context, purchaseID uuid.UUID) ([]model.PaymentHistory, error)
	ListForSale(ctx context.Context, saleID uuid.UUID) ([]model.PaymentHistory, error)
}

type paymentHistoryRepository struct {
	db *gorm.DB
}

func NewPaymentHistoryRepository(db *gorm.DB) PaymentHistoryRepository {
	return &paymentHistoryRepository{db: db}
}

func (r *paymentHistoryRepository) Create(ctx context.Context, payment *model.PaymentHistory) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

func (r *paymentHistoryRepository) ListForPurchase(ctx context.Context, purchaseID uuid.UUID) ([]model.PaymentHistory, error) {
	var payments []model.PaymentHistory
	if err := GetDB(ctx, r.db).Where("purchase_id = ?", purchaseID).
		Order("created_at asc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentHistoryRepository) ListForSale(ctx context.Context, saleID uuid.UUID) ([]model.PaymentHistory, error) {
	var payments []model.PaymentHistory
	if err := GetDB(ctx, r.db).Where("sale_id = ?", saleID).
		Order("created_at asc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
