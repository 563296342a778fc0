package postgres

import (
	"context"
	"fmt"

	"github.com/navtrail/navtrail-backend/internal/domain"
)

// navRepository implements domain.NAVRepository
type navRepository struct {
	db *DB
}

// NewNAVRepository creates a new NAV repository
func NewNAVRepository(db *DB) domain.NAVRepository {
	return &navRepository{db: db}
}

// UpsertLatest stores the latest known quote for a scheme
func (r *navRepository) UpsertLatest(ctx context.Context, schemeCode int, quote domain.NAVQuote) error {
	query := `
		INSERT INTO fund_latest_nav (scheme_code, nav_date, nav, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (scheme_code) DO UPDATE SET
			nav_date = EXCLUDED.nav_date,
			nav = EXCLUDED.nav,
			updated_at = now()
	`

	_, err := r.db.ExecContext(ctx, query, schemeCode, quote.Date, quote.NAV.String())
	if err != nil {
		return fmt.Errorf("failed to upsert latest nav: %w", err)
	}

	return nil
}

// AppendHistory records a quote in the scheme's history. Re-running the
// refresh on the same day overwrites the same (scheme, date) row.
func (r *navRepository) AppendHistory(ctx context.Context, schemeCode int, quote domain.NAVQuote) error {
	query := `
		INSERT INTO fund_nav_history (scheme_code, nav_date, nav)
		VALUES ($1, $2, $3)
		ON CONFLICT (scheme_code, nav_date) DO UPDATE SET
			nav = EXCLUDED.nav
	`

	_, err := r.db.ExecContext(ctx, query, schemeCode, quote.Date, quote.NAV.String())
	if err != nil {
		return fmt.Errorf("failed to insert nav history: %w", err)
	}

	return nil
}
