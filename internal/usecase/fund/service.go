// Package fund serves the cached fund catalogue: metadata search with
// pagination and the recent NAV history report for one scheme.
package fund

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/navtrail/navtrail-backend/internal/dates"
	"github.com/navtrail/navtrail-backend/internal/domain"
)

const (
	defaultPageSize  = 20
	recentQuoteCount = 30
)

// Pagination describes the page window of a fund search.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalFunds  int  `json:"totalFunds"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// Page is one page of the fund catalogue.
type Page struct {
	Funds      []*domain.Fund `json:"funds"`
	Pagination Pagination     `json:"pagination"`
}

// QuotePoint is one dated NAV value in wire format.
type QuotePoint struct {
	Date string          `json:"date"`
	NAV  decimal.Decimal `json:"nav"`
}

// SchemeHistory is the recent NAV report for one scheme.
type SchemeHistory struct {
	SchemeCode int             `json:"schemeCode"`
	SchemeName string          `json:"schemeName"`
	CurrentNAV decimal.Decimal `json:"currentNav"`
	AsOn       string          `json:"asOn"`
	History    []QuotePoint    `json:"history"`
}

// Service handles fund catalogue operations.
type Service struct {
	FundRepo domain.FundRepository
	Provider domain.NAVProvider

	log zerolog.Logger
}

// NewService creates a new fund Service instance.
func NewService(fundRepo domain.FundRepository, provider domain.NAVProvider, log zerolog.Logger) *Service {
	return &Service{
		FundRepo: fundRepo,
		Provider: provider,
		log:      log.With().Str("component", "fund").Logger(),
	}
}

// List returns one page of cached funds whose metadata matches search
// (all funds when search is empty). page and limit fall back to 1 and 20.
func (s *Service) List(ctx context.Context, search string, page, limit int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}

	total, err := s.FundRepo.Count(ctx, search)
	if err != nil {
		return nil, err
	}

	funds, err := s.FundRepo.Search(ctx, search, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	if funds == nil {
		funds = []*domain.Fund{}
	}

	totalPages := (total + limit - 1) / limit

	return &Page{
		Funds: funds,
		Pagination: Pagination{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalFunds:  total,
			HasNext:     page < totalPages,
			HasPrev:     page > 1,
		},
	}, nil
}

// History returns the latest NAV and the 30 most recent quotes for a
// scheme already present in the catalogue.
func (s *Service) History(ctx context.Context, schemeCode int) (*SchemeHistory, error) {
	if schemeCode <= 0 {
		return nil, fmt.Errorf("%w: scheme code must be a positive number", domain.ErrInvalidInput)
	}

	fund, err := s.FundRepo.GetBySchemeCode(ctx, schemeCode)
	if err != nil {
		return nil, err
	}

	data, err := s.Provider.FetchSeries(ctx, schemeCode)
	if err != nil {
		return nil, err
	}

	latest, ok := data.Series.Latest()
	if !ok {
		return nil, fmt.Errorf("%w: scheme %d has no quotes", domain.ErrSchemeNotFound, schemeCode)
	}

	recent := data.Series.Recent(recentQuoteCount)
	history := make([]QuotePoint, 0, len(recent))
	for _, q := range recent {
		history = append(history, QuotePoint{Date: dates.FormatDMY(q.Date), NAV: q.NAV})
	}

	return &SchemeHistory{
		SchemeCode: fund.SchemeCode,
		SchemeName: fund.SchemeName,
		CurrentNAV: latest.NAV,
		AsOn:       dates.FormatDMY(latest.Date),
		History:    history,
	}, nil
}
