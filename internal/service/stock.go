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

// stockDelta describes one stock mutation: which product, how much, why.
// Quantity is always positive; the movement type decides the sign.
type stockDelta struct {
	ProductID     uuid.UUID
	Quantity      decimal.Decimal
	MovementType  string
	ReferenceType string
	ReferenceID   *uuid.UUID
	Notes         string
	ActorID       *uuid.UUID
	AllowNegative bool
}

func movementSign(movementType string) decimal.Decimal {
	if movementType == model.MovementSale || movementType == model.MovementAdjustmentOut {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// applyStockDelta locks the product row, applies the movement's signed
// effect to the stock quantity, and appends exactly one StockMovement with
// the balance captured before and after. Must run inside a transaction —
// the row lock serializes concurrent movements against the same product.
func applyStockDelta(
	txCtx context.Context,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	d stockDelta,
) (*model.StockMovement, error) {
	if !d.Quantity.IsPositive() {
		return nil, apperror.Validation("quantity must be greater than zero")
	}

	product, err := products.FindByIDForUpdate(txCtx, d.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product")
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, apperror.Validation("product %s is inactive", product.Name)
	}

	before := product.StockQuantity
	after := before.Add(d.Quantity.Mul(movementSign(d.MovementType)))
	if after.IsNegative() && !d.AllowNegative {
		return nil, apperror.New(apperror.CodeInsufficientStock,
			"insufficient stock for product %s (available: %s, requested: %s)",
			product.Name, before.String(), d.Quantity.String())
	}

	if err := products.UpdateStock(txCtx, product.ID, after); err != nil {
		return nil, err
	}

	movement := &model.StockMovement{
		ProductID:     product.ID,
		MovementType:  d.MovementType,
		Quantity:      d.Quantity,
		BalanceBefore: before,
		BalanceAfter:  after,
		ReferenceType: d.ReferenceType,
		ReferenceID:   d.ReferenceID,
		Notes:         d.Notes,
		CreatedBy:     d.ActorID,
	}
	if err := movements.Create(txCtx, movement); err != nil {
		return nil, err
	}

	return movement, nil
}
