package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	// Create inserts a new user
	Create(ctx context.Context, user *User) error

	// GetByEmail retrieves a user by email, ErrNotFound when absent
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// PurchaseRepository defines the interface for purchase persistence operations
type PurchaseRepository interface {
	// Create inserts a new purchase record
	Create(ctx context.Context, purchase *Purchase) error

	// ListByUser retrieves all purchases owned by a user
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Purchase, error)

	// Delete removes purchases matching scheme code and purchase date,
	// returning the number of rows removed
	Delete(ctx context.Context, userID uuid.UUID, schemeCode int, purchaseDate time.Time) (int, error)

	// SchemeCodes returns the distinct scheme codes present across all
	// users' purchases (used by the NAV refresh job)
	SchemeCodes(ctx context.Context) ([]int, error)
}

// FundRepository defines the interface for fund metadata persistence
type FundRepository interface {
	// Upsert inserts or updates cached fund metadata
	Upsert(ctx context.Context, fund *Fund) error

	// GetBySchemeCode retrieves a fund by scheme code, ErrNotFound when absent
	GetBySchemeCode(ctx context.Context, schemeCode int) (*Fund, error)

	// Search retrieves a page of funds whose name, house, type or category
	// matches the filter (all funds when filter is empty)
	Search(ctx context.Context, filter string, limit, offset int) ([]*Fund, error)

	// Count returns the number of funds matching the filter
	Count(ctx context.Context, filter string) (int, error)
}

// NAVRepository defines the interface for refreshed NAV persistence
type NAVRepository interface {
	// UpsertLatest stores the latest known quote for a scheme
	UpsertLatest(ctx context.Context, schemeCode int, quote NAVQuote) error

	// AppendHistory records a quote in the scheme's history, idempotent
	// per (scheme, date)
	AppendHistory(ctx context.Context, schemeCode int, quote NAVQuote) error
}

// NAVProvider fetches a scheme's metadata and NAV series from the external
// quote API. Quote order is unspecified; callers must not assume one.
type NAVProvider interface {
	// FetchSeries retrieves fund metadata and the full NAV series.
	// Fails with ErrSchemeNotFound or ErrProviderUnavailable.
	FetchSeries(ctx context.Context, schemeCode int) (*SchemeData, error)
}
