package repository

import (
	"context"
	"errors"
	"time"

	"backend/internal/apperror"

	"gorm.io/gorm"
)

type contextKey string

const txKey contextKey = "gorm_tx"

// Every operation must finish inside this window; past it the store aborts
// and the caller receives a retryable timeout error. The core never retries.
const txTimeout = 15 * time.Second

// TransactionManager manages database transactions via context injection.
// Each mutating operation of the ledger core runs inside exactly one RunInTx.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type transactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &transactionManager{db: db}
}

func (t *transactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey, tx)
		return fn(txCtx)
	})
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return apperror.Wrap(apperror.CodeTxTimeout, err, "transaction timed out")
	}
	return err
}

// GetDB extracts the transaction DB from context if present, otherwise returns root DB.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}
