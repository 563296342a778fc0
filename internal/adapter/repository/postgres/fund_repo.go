package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/navtrail/navtrail-backend/internal/domain"
)

// fundRepository implements domain.FundRepository
type fundRepository struct {
	db *DB
}

// NewFundRepository creates a new fund repository
func NewFundRepository(db *DB) domain.FundRepository {
	return &fundRepository{db: db}
}

// Upsert inserts or updates cached fund metadata
func (r *fundRepository) Upsert(ctx context.Context, fund *domain.Fund) error {
	query := `
		INSERT INTO funds (scheme_code, scheme_name, isin_growth, isin_div_reinvestment, fund_house, scheme_type, scheme_category)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (scheme_code) DO UPDATE SET
			scheme_name = EXCLUDED.scheme_name,
			isin_growth = EXCLUDED.isin_growth,
			isin_div_reinvestment = EXCLUDED.isin_div_reinvestment,
			fund_house = EXCLUDED.fund_house,
			scheme_type = EXCLUDED.scheme_type,
			scheme_category = EXCLUDED.scheme_category
	`

	_, err := r.db.ExecContext(ctx, query,
		fund.SchemeCode,
		fund.SchemeName,
		fund.ISINGrowth,
		fund.ISINDivReinvestment,
		fund.FundHouse,
		fund.SchemeType,
		fund.SchemeCategory,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert fund: %w", err)
	}

	return nil
}

// GetBySchemeCode retrieves a fund by scheme code
func (r *fundRepository) GetBySchemeCode(ctx context.Context, schemeCode int) (*domain.Fund, error) {
	query := `
		SELECT scheme_code, scheme_name, isin_growth, isin_div_reinvestment, fund_house, scheme_type, scheme_category
		FROM funds
		WHERE scheme_code = $1
	`

	fund, err := scanFund(r.db.QueryRowContext(ctx, query, schemeCode))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fund: %w", err)
	}

	return fund, nil
}

// Search retrieves a page of funds whose metadata matches the filter,
// ordered by scheme name. An empty filter matches every fund.
func (r *fundRepository) Search(ctx context.Context, filter string, limit, offset int) ([]*domain.Fund, error) {
	query := `
		SELECT scheme_code, scheme_name, isin_growth, isin_div_reinvestment, fund_house, scheme_type, scheme_category
		FROM funds
		WHERE $1 = ''
			OR scheme_name ILIKE '%' || $1 || '%'
			OR fund_house ILIKE '%' || $1 || '%'
			OR scheme_type ILIKE '%' || $1 || '%'
			OR scheme_category ILIKE '%' || $1 || '%'
		ORDER BY scheme_name
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, filter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search funds: %w", err)
	}
	defer rows.Close()

	funds := []*domain.Fund{}
	for rows.Next() {
		fund, err := scanFund(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fund: %w", err)
		}
		funds = append(funds, fund)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate funds: %w", err)
	}

	return funds, nil
}

// Count returns the number of funds matching the filter
func (r *fundRepository) Count(ctx context.Context, filter string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM funds
		WHERE $1 = ''
			OR scheme_name ILIKE '%' || $1 || '%'
			OR fund_house ILIKE '%' || $1 || '%'
			OR scheme_type ILIKE '%' || $1 || '%'
			OR scheme_category ILIKE '%' || $1 || '%'
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, filter).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count funds: %w", err)
	}

	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFund(row rowScanner) (*domain.Fund, error) {
	var fund domain.Fund

	err := row.Scan(
		&fund.SchemeCode,
		&fund.SchemeName,
		&fund.ISINGrowth,
		&fund.ISINDivReinvestment,
		&fund.FundHouse,
		&fund.SchemeType,
		&fund.SchemeCategory,
	)
	if err != nil {
		return nil, err
	}

	return &fund, nil
}
