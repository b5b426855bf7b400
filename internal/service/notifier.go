package service

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockNotifier receives best-effort notifications after a stock-changing
// transaction commits. Implemented by the websocket hub; a nil notifier
// disables broadcasting (tests, CLI usage).
type StockNotifier interface {
	StockChanged(productID uuid.UUID, name string, quantity, minimumLevel decimal.Decimal)
}

func notifyStock(n StockNotifier, productID uuid.UUID, name string, quantity, minimumLevel decimal.Decimal) {
	if n != nil {
		n.StockChanged(productID, name, quantity, minimumLevel)
	}
}
