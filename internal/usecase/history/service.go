// Package history implements the portfolio history reconstructor: a daily
// time series of total portfolio value and profit/loss over a date range,
// carrying the last known NAV forward across days without quotes.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/navtrail/navtrail-backend/internal/dates"
	"github.com/navtrail/navtrail-backend/internal/domain"
)

// defaultRangeDays is the span reported when no start date is supplied.
const defaultRangeDays = 30

// SeriesLoader loads NAV series for a set of scheme codes. Schemes whose
// data is unavailable are simply absent from the map.
type SeriesLoader interface {
	Load(ctx context.Context, schemeCodes []int) (map[int]*domain.NAVSeries, error)
}

// Snapshot is the portfolio state at the end of one calendar day.
type Snapshot struct {
	Date       string          `json:"date"`
	TotalValue decimal.Decimal `json:"totalValue"`
	ProfitLoss decimal.Decimal `json:"profitLoss"`
}

// Service handles history reconstruction for a user's portfolio.
type Service struct {
	PurchaseRepo domain.PurchaseRepository
	Series       SeriesLoader

	log zerolog.Logger
	now func() time.Time // overridable in tests
}

// NewService creates a new history Service instance.
func NewService(purchaseRepo domain.PurchaseRepository, series SeriesLoader, log zerolog.Logger) *Service {
	return &Service{
		PurchaseRepo: purchaseRepo,
		Series:       series,
		log:          log.With().Str("component", "history").Logger(),
		now:          time.Now,
	}
}

// PortfolioHistory computes the daily value series for a user.
//
// startStr and endStr are optional DD-MM-YYYY strings; endStr defaults to
// today and startStr to endDate minus 30 days. Returns domain.ErrNoHoldings
// for an empty portfolio and domain.ErrInvalidInput for malformed dates.
func (s *Service) PortfolioHistory(ctx context.Context, userID uuid.UUID, startStr, endStr string) ([]Snapshot, error) {
	end := dates.Normalize(s.now())
	if endStr != "" {
		parsed, err := dates.ParseDMY(endStr)
		if err != nil {
			return nil, fmt.Errorf("%w: endDate: %v", domain.ErrInvalidInput, err)
		}
		end = parsed
	}

	start := end.AddDate(0, 0, -defaultRangeDays)
	if startStr != "" {
		parsed, err := dates.ParseDMY(startStr)
		if err != nil {
			return nil, fmt.Errorf("%w: startDate: %v", domain.ErrInvalidInput, err)
		}
		start = parsed
	}

	purchases, err := s.PurchaseRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(purchases) == 0 {
		return nil, domain.ErrNoHoldings
	}

	series, err := s.Series.Load(ctx, domain.DistinctSchemeCodes(purchases))
	if err != nil {
		return nil, err
	}

	return Compute(purchases, series, start, end), nil
}

// Compute reconstructs the daily series between start and end inclusive.
//
// The effective start is clamped to the earliest purchase date so the series
// never reports before the user owned anything. For each day, every purchase
// made on or before that day contributes units x NAV-on-day, where the NAV
// is the latest quote at or before the day (binary search over the sorted
// series); days before the first quote fall back to the purchase NAV. The
// invested baseline is constant per purchase.
func Compute(purchases []*domain.Purchase, series map[int]*domain.NAVSeries, start, end time.Time) []Snapshot {
	start = dates.Normalize(start)
	end = dates.Normalize(end)

	if earliest, ok := domain.EarliestPurchaseDate(purchases); ok {
		earliest = dates.Normalize(earliest)
		if start.Before(earliest) {
			start = earliest
		}
	}

	days := dates.EnumerateDays(start, end)
	snapshots := make([]Snapshot, 0, len(days))

	for _, day := range days {
		totalValue := decimal.Zero
		totalInvested := decimal.Zero

		for _, p := range purchases {
			if dates.Normalize(p.PurchaseDate).After(day) {
				continue
			}

			nav := p.PurchaseNAV
			if s, ok := series[p.SchemeCode]; ok {
				if q, ok := s.NavOn(day); ok {
					nav = q.NAV
				}
			}

			totalValue = totalValue.Add(p.Units.Mul(nav))
			totalInvested = totalInvested.Add(p.Units.Mul(p.PurchaseNAV))
		}

		snapshots = append(snapshots, Snapshot{
			Date:       dates.FormatDMY(day),
			TotalValue: totalValue.Round(2),
			ProfitLoss: totalValue.Sub(totalInvested).Round(2),
		})
	}

	return snapshots
}
