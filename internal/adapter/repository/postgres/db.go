// Package postgres implements the domain repositories on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
// connectionString should be in the format: "host=localhost port=5432 user=postgres password=postgres dbname=navtrail sslmode=disable"
func NewDB(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// EnsureSchema creates the tables the backend needs when they do not
// exist yet. Decimals are stored as NUMERIC and scanned through strings.
func (db *DB) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS purchases (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			scheme_code INTEGER NOT NULL,
			scheme_name TEXT NOT NULL,
			units NUMERIC(20, 4) NOT NULL,
			purchase_date DATE NOT NULL,
			purchase_nav NUMERIC(20, 4) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_user ON purchases (user_id)`,
		`CREATE TABLE IF NOT EXISTS funds (
			scheme_code INTEGER PRIMARY KEY,
			scheme_name TEXT NOT NULL,
			isin_growth TEXT,
			isin_div_reinvestment TEXT,
			fund_house TEXT,
			scheme_type TEXT,
			scheme_category TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS fund_latest_nav (
			scheme_code INTEGER PRIMARY KEY,
			nav_date DATE NOT NULL,
			nav NUMERIC(20, 4) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS fund_nav_history (
			scheme_code INTEGER NOT NULL,
			nav_date DATE NOT NULL,
			nav NUMERIC(20, 4) NOT NULL,
			PRIMARY KEY (scheme_code, nav_date)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
