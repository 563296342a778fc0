package domain

import (
	"fmt"

	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase represents a single fund purchase event. Purchases are immutable
// once created and owned by exactly one user.
type Purchase struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	SchemeCode   int
	SchemeName   string
	Units        decimal.Decimal
	PurchaseDate time.Time // calendar date, midnight UTC
	PurchaseNAV  decimal.Decimal
	CreatedAt    time.Time
}

// Validate ensures the purchase adheres to domain rules:
// positive units, positive purchase NAV, and a purchase date that does not
// postdate the record's creation.
func (p *Purchase) Validate() error {
	if p.SchemeCode <= 0 {
		return fmt.Errorf("%w: scheme code must be a positive number", ErrInvalidInput)
	}
	if p.Units.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: units must be a positive number", ErrInvalidInput)
	}
	if p.PurchaseNAV.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: purchase NAV must be a positive number", ErrInvalidInput)
	}
	if !p.CreatedAt.IsZero() && p.PurchaseDate.After(p.CreatedAt) {
		return fmt.Errorf("%w: purchase date cannot be in the future", ErrInvalidInput)
	}
	return nil
}

// EarliestPurchaseDate returns the smallest purchase date across purchases.
// The boolean is false when the slice is empty.
func EarliestPurchaseDate(purchases []*Purchase) (time.Time, bool) {
	if len(purchases) == 0 {
		return time.Time{}, false
	}
	min := purchases[0].PurchaseDate
	for _, p := range purchases[1:] {
		if p.PurchaseDate.Before(min) {
			min = p.PurchaseDate
		}
	}
	return min, true
}

// DistinctSchemeCodes returns the unique scheme codes across purchases, in
// first-seen order.
func DistinctSchemeCodes(purchases []*Purchase) []int {
	seen := make(map[int]struct{}, len(purchases))
	var codes []int
	for _, p := range purchases {
		if _, ok := seen[p.SchemeCode]; ok {
			continue
		}
		seen[p.SchemeCode] = struct{}{}
		codes = append(codes, p.SchemeCode)
	}
	return codes
}
