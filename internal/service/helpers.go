package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/internal/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice number prefixes
const (
	invoicePrefixPurchase = "PUR"
	invoicePrefixSale     = "SAL"
	invoicePrefixOpening  = "OB"
)

// timeFormat is the timestamp layout used in API responses.
const timeFormat = time.RFC3339

// generateInvoiceNo builds a unique invoice number from the creation time
// plus a random token, e.g. PUR-20250114093042-7F3A1C.
func generateInvoiceNo(prefix string) string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("20060102150405"), token)
}

// parseActor converts the authenticated user ID into the nullable actor
// column value. An unparseable ID is recorded as null rather than failing
// the operation.
func parseActor(actorID string) *uuid.UUID {
	if parsed, err := uuid.Parse(actorID); err == nil {
		return &parsed
	}
	return nil
}

// parseAmount parses a decimal request field, treating the empty string as
// zero. Negative values are rejected.
func parseAmount(field, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperror.Validation("invalid %s: %s", field, raw)
	}
	if value.IsNegative() {
		return decimal.Zero, apperror.Validation("%s cannot be negative", field)
	}
	return value, nil
}

// parseDate parses a YYYY-MM-DD request field, defaulting to now.
func parseDate(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, apperror.Validation("invalid %s: expected YYYY-MM-DD", field)
	}
	return parsed, nil
}

// wrapInternal passes typed errors through untouched and wraps everything
// else (driver failures, constraint violations) so the caller still sees
// exactly one error with the underlying cause attached.
func wrapInternal(err error, format string, args ...interface{}) error {
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperror.Wrap(apperror.CodeInternal, err, format, args...)
}
