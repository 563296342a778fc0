// Package portfolio handles a user's purchase records: adding a fund
// purchase, listing current positions and removing purchases.
package portfolio

import (
	"context"
	"errors"
	"fmt"
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

// Position is one purchase record with its current market state attached.
// CurrentNAV and CurrentValue are nil when the scheme's NAV is unavailable.
type Position struct {
	SchemeCode   int              `json:"schemeCode"`
	SchemeName   string           `json:"schemeName"`
	Units        decimal.Decimal  `json:"units"`
	CurrentNAV   *decimal.Decimal `json:"currentNav"`
	CurrentValue *decimal.Decimal `json:"currentValue"`
}

// Service handles purchase CRUD and the holdings listing.
type Service struct {
	PurchaseRepo domain.PurchaseRepository
	FundRepo     domain.FundRepository
	Provider     domain.NAVProvider
	Series       SeriesLoader

	log zerolog.Logger
	now func() time.Time // overridable in tests
}

// NewService creates a new portfolio Service instance.
func NewService(
	purchaseRepo domain.PurchaseRepository,
	fundRepo domain.FundRepository,
	provider domain.NAVProvider,
	series SeriesLoader,
	log zerolog.Logger,
) *Service {
	return &Service{
		PurchaseRepo: purchaseRepo,
		FundRepo:     fundRepo,
		Provider:     provider,
		Series:       series,
		log:          log.With().Str("component", "portfolio").Logger(),
		now:          time.Now,
	}
}

// AddPurchase records a fund purchase for a user.
//
// The fund's metadata is cached on first sight. The purchase NAV is the
// latest quote at or before the purchase date (today when no date is
// given); when that cannot be determined the purchase is rejected with
// domain.ErrInvalidInput rather than stored with a guessed price.
func (s *Service) AddPurchase(ctx context.Context, userID uuid.UUID, schemeCode int, units decimal.Decimal, purchaseDateStr string) (*domain.Purchase, error) {
	if schemeCode <= 0 {
		return nil, fmt.Errorf("%w: scheme code must be a positive number", domain.ErrInvalidInput)
	}
	if units.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: units must be a positive number", domain.ErrInvalidInput)
	}

	purchaseDate := dates.Normalize(s.now())
	if purchaseDateStr != "" {
		parsed, err := dates.ParseDMY(purchaseDateStr)
		if err != nil {
			return nil, fmt.Errorf("%w: purchaseDate: %v", domain.ErrInvalidInput, err)
		}
		purchaseDate = parsed
	}

	// One provider fetch serves both the metadata cache and the purchase
	// NAV lookup.
	data, err := s.Provider.FetchSeries(ctx, schemeCode)
	if err != nil {
		return nil, err
	}

	if _, err := s.FundRepo.GetBySchemeCode(ctx, schemeCode); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if err := s.FundRepo.Upsert(ctx, &data.Fund); err != nil {
			return nil, err
		}
		s.log.Info().Int("scheme", schemeCode).Str("name", data.Fund.SchemeName).Msg("Cached new fund")
	}

	quote, ok := data.Series.NavOn(purchaseDate)
	if !ok {
		return nil, fmt.Errorf("%w: could not determine purchase NAV for %s", domain.ErrInvalidInput, dates.FormatDMY(purchaseDate))
	}

	purchase := &domain.Purchase{
		ID:           uuid.New(),
		UserID:       userID,
		SchemeCode:   schemeCode,
		SchemeName:   data.Fund.SchemeName,
		Units:        units,
		PurchaseDate: purchaseDate,
		PurchaseNAV:  quote.NAV,
		CreatedAt:    s.now(),
	}
	if err := purchase.Validate(); err != nil {
		return nil, err
	}

	if err := s.PurchaseRepo.Create(ctx, purchase); err != nil {
		return nil, err
	}
	return purchase, nil
}

// ListPositions returns one position per purchase record with the current
// NAV attached. An empty portfolio yields an empty list, not an error, and
// a scheme whose NAV is unavailable yields nil current fields.
func (s *Service) ListPositions(ctx context.Context, userID uuid.UUID) ([]Position, error) {
	purchases, err := s.PurchaseRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(purchases) == 0 {
		return []Position{}, nil
	}

	series, err := s.Series.Load(ctx, domain.DistinctSchemeCodes(purchases))
	if err != nil {
		return nil, err
	}

	positions := make([]Position, 0, len(purchases))
	for _, p := range purchases {
		pos := Position{
			SchemeCode: p.SchemeCode,
			SchemeName: p.SchemeName,
			Units:      p.Units,
		}
		if s, ok := series[p.SchemeCode]; ok {
			if latest, ok := s.Latest(); ok {
				nav := latest.NAV
				value := p.Units.Mul(nav).Round(2)
				pos.CurrentNAV = &nav
				pos.CurrentValue = &value
			}
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

// RemovePurchase deletes the user's purchases of a scheme made on a given
// calendar date. Returns domain.ErrNotFound when nothing matched.
func (s *Service) RemovePurchase(ctx context.Context, userID uuid.UUID, schemeCode int, purchaseDateStr string) error {
	if schemeCode <= 0 {
		return fmt.Errorf("%w: scheme code must be a positive number", domain.ErrInvalidInput)
	}
	if purchaseDateStr == "" {
		return fmt.Errorf("%w: purchaseDate is required", domain.ErrInvalidInput)
	}
	purchaseDate, err := dates.ParseDMY(purchaseDateStr)
	if err != nil {
		return fmt.Errorf("%w: purchaseDate: %v", domain.ErrInvalidInput, err)
	}

	removed, err := s.PurchaseRepo.Delete(ctx, userID, schemeCode, purchaseDate)
	if err != nil {
		return err
	}
	if removed == 0 {
		return fmt.Errorf("%w: no purchase of scheme %d on %s", domain.ErrNotFound, schemeCode, purchaseDateStr)
	}

	s.log.Info().Int("scheme", schemeCode).Int("removed", removed).Msg("Removed purchases")
	return nil
}
