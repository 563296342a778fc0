package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/navtrail/navtrail-backend/internal/dates"
	"github.com/navtrail/navtrail-backend/internal/domain"
)

// purchaseRepository implements domain.PurchaseRepository
type purchaseRepository struct {
	db *DB
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *DB) domain.PurchaseRepository {
	return &purchaseRepository{db: db}
}

// Create creates a new purchase record
func (r *purchaseRepository) Create(ctx context.Context, purchase *domain.Purchase) error {
	query := `
		INSERT INTO purchases (id, user_id, scheme_code, scheme_name, units, purchase_date, purchase_nav, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		purchase.ID,
		purchase.UserID,
		purchase.SchemeCode,
		purchase.SchemeName,
		purchase.Units.String(),
		purchase.PurchaseDate,
		purchase.PurchaseNAV.String(),
		purchase.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert purchase: %w", err)
	}

	return nil
}

// ListByUser retrieves all purchases owned by a user, oldest first
func (r *purchaseRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Purchase, error) {
	query := `
		SELECT id, user_id, scheme_code, scheme_name, units, purchase_date, purchase_nav, created_at
		FROM purchases
		WHERE user_id = $1
		ORDER BY purchase_date, created_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []*domain.Purchase
	for rows.Next() {
		var p domain.Purchase
		var unitsStr, navStr string

		err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.SchemeCode,
			&p.SchemeName,
			&unitsStr,
			&p.PurchaseDate,
			&navStr,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}

		p.Units, err = decimal.NewFromString(unitsStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse units: %w", err)
		}
		p.PurchaseNAV, err = decimal.NewFromString(navStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse purchase nav: %w", err)
		}

		// DATE columns come back as timestamps in the session zone.
		p.PurchaseDate = dates.Normalize(p.PurchaseDate)

		purchases = append(purchases, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate purchases: %w", err)
	}

	return purchases, nil
}

// Delete removes all purchases for the user matching scheme code and date
func (r *purchaseRepository) Delete(ctx context.Context, userID uuid.UUID, schemeCode int, purchaseDate time.Time) (int, error) {
	query := `
		DELETE FROM purchases
		WHERE user_id = $1 AND scheme_code = $2 AND purchase_date = $3
	`

	result, err := r.db.ExecContext(ctx, query, userID, schemeCode, purchaseDate)
	if err != nil {
		return 0, fmt.Errorf("failed to delete purchases: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted purchases: %w", err)
	}

	return int(removed), nil
}

// SchemeCodes returns the distinct scheme codes held across all users
func (r *purchaseRepository) SchemeCodes(ctx context.Context) ([]int, error) {
	query := `
		SELECT DISTINCT scheme_code
		FROM purchases
		ORDER BY scheme_code
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheme codes: %w", err)
	}
	defer rows.Close()

	var codes []int
	for rows.Next() {
		var code int
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan scheme code: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scheme codes: %w", err)
	}

	return codes, nil
}
