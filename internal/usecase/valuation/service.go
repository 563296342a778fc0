// Package valuation implements the portfolio valuation engine: given a
// user's purchases and the latest NAV per scheme, it computes the current
// value, invested total and profit/loss, aggregated per scheme.
package valuation

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/navtrail/navtrail-backend/internal/dates"
	"github.com/navtrail/navtrail-backend/internal/domain"
)

// SeriesLoader loads NAV series for a set of scheme codes. Schemes whose
// data is unavailable are simply absent from the map.
type SeriesLoader interface {
	Load(ctx context.Context, schemeCodes []int) (map[int]*domain.NAVSeries, error)
}

// Holding is the per-scheme aggregate across all purchases of that scheme.
// CurrentNAV, CurrentValue and ProfitLoss are nil when the scheme's NAV
// could not be resolved.
type Holding struct {
	SchemeCode    int              `json:"schemeCode"`
	SchemeName    string           `json:"schemeName"`
	Units         decimal.Decimal  `json:"units"`
	CurrentNAV    *decimal.Decimal `json:"currentNav"`
	CurrentValue  *decimal.Decimal `json:"currentValue"`
	InvestedValue decimal.Decimal  `json:"investedValue"`
	ProfitLoss    *decimal.Decimal `json:"profitLoss"`
}

// Valuation is the full portfolio valuation report. Totals cover only
// holdings whose NAV resolved; unresolved holdings are listed with nil
// current fields so one bad scheme never blocks the report.
type Valuation struct {
	TotalInvestment   decimal.Decimal `json:"totalInvestment"`
	CurrentValue      decimal.Decimal `json:"currentValue"`
	ProfitLoss        decimal.Decimal `json:"profitLoss"`
	ProfitLossPercent decimal.Decimal `json:"profitLossPercent"`
	AsOn              string          `json:"asOn"`
	Holdings          []Holding       `json:"holdings"`
}

// Service handles valuation operations for a user's portfolio.
type Service struct {
	PurchaseRepo domain.PurchaseRepository
	Series       SeriesLoader

	log zerolog.Logger
}

// NewService creates a new valuation Service instance.
func NewService(purchaseRepo domain.PurchaseRepository, series SeriesLoader, log zerolog.Logger) *Service {
	return &Service{
		PurchaseRepo: purchaseRepo,
		Series:       series,
		log:          log.With().Str("component", "valuation").Logger(),
	}
}

// PortfolioValue loads the user's purchases and NAV series and computes the
// valuation report. Returns domain.ErrNoHoldings for an empty portfolio.
func (s *Service) PortfolioValue(ctx context.Context, userID uuid.UUID) (*Valuation, error) {
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

	return Compute(purchases, series)
}

// Compute aggregates purchases by scheme against the latest NAV of each
// scheme's series.
//
// Current value is computed per purchase (units x latest NAV) and summed,
// keeping it numerically consistent with the per-purchase invested sums.
// AsOn is the maximum quote date across all resolved schemes.
func Compute(purchases []*domain.Purchase, series map[int]*domain.NAVSeries) (*Valuation, error) {
	if len(purchases) == 0 {
		return nil, domain.ErrNoHoldings
	}

	grouped := make(map[int]*Holding)
	resolved := make(map[int]bool)
	var asOn time.Time

	for _, p := range purchases {
		h, ok := grouped[p.SchemeCode]
		if !ok {
			h = &Holding{
				SchemeCode: p.SchemeCode,
				SchemeName: p.SchemeName,
			}
			grouped[p.SchemeCode] = h

			if s, ok := series[p.SchemeCode]; ok {
				if latest, ok := s.Latest(); ok {
					nav := latest.NAV
					h.CurrentNAV = &nav
					resolved[p.SchemeCode] = true
					if latest.Date.After(asOn) {
						asOn = latest.Date
					}
				}
			}
		}

		invested := p.Units.Mul(p.PurchaseNAV)
		h.Units = h.Units.Add(p.Units)
		h.InvestedValue = h.InvestedValue.Add(invested)

		if h.CurrentNAV != nil {
			current := p.Units.Mul(*h.CurrentNAV)
			if h.CurrentValue == nil {
				h.CurrentValue = &decimal.Decimal{}
			}
			*h.CurrentValue = h.CurrentValue.Add(current)
			if h.ProfitLoss == nil {
				h.ProfitLoss = &decimal.Decimal{}
			}
			*h.ProfitLoss = h.ProfitLoss.Add(current.Sub(invested))
		}
	}

	totalInvestment := decimal.Zero
	currentValue := decimal.Zero

	holdings := make([]Holding, 0, len(grouped))
	for code, h := range grouped {
		if resolved[code] {
			totalInvestment = totalInvestment.Add(h.InvestedValue)
			currentValue = currentValue.Add(*h.CurrentValue)

			rounded := h.CurrentValue.Round(2)
			h.CurrentValue = &rounded
			pl := h.ProfitLoss.Round(2)
			h.ProfitLoss = &pl
		}
		h.InvestedValue = h.InvestedValue.Round(2)
		holdings = append(holdings, *h)
	}
	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].SchemeCode < holdings[j].SchemeCode
	})

	profitLoss := currentValue.Sub(totalInvestment)
	profitLossPercent := decimal.Zero
	if totalInvestment.IsPositive() {
		profitLossPercent = profitLoss.Div(totalInvestment).Mul(decimal.NewFromInt(100))
	}

	report := &Valuation{
		TotalInvestment:   totalInvestment.Round(2),
		CurrentValue:      currentValue.Round(2),
		ProfitLoss:        profitLoss.Round(2),
		ProfitLossPercent: profitLossPercent.Round(3),
		Holdings:          holdings,
	}
	if !asOn.IsZero() {
		report.AsOn = dates.FormatDMY(asOn)
	}
	return report, nil
}
