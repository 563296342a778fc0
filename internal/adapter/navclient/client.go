// Package navclient implements the mfapi.in NAV provider client.
package navclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/navtrail/navtrail-backend/internal/dates"
	"github.com/navtrail/navtrail-backend/internal/domain"
)

// DefaultBaseURL is the public mfapi.in endpoint.
const DefaultBaseURL = "https://api.mfapi.in/mf"

// Client is an mfapi.in API client. It implements domain.NAVProvider.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new mfapi.in client. baseURL falls back to
// DefaultBaseURL when empty.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log.With().Str("client", "mfapi").Logger(),
	}
}

// schemeResponse represents the response from the mfapi.in scheme endpoint.
// Quotes arrive most-recent-first with NAV encoded as a string.
type schemeResponse struct {
	Meta struct {
		SchemeCode          int     `json:"scheme_code"`
		SchemeName          string  `json:"scheme_name"`
		ISINGrowth          *string `json:"isin_growth"`
		ISINDivReinvestment *string `json:"isin_div_reinvestment"`
		FundHouse           *string `json:"fund_house"`
		SchemeType          *string `json:"scheme_type"`
		SchemeCategory      *string `json:"scheme_category"`
	} `json:"meta"`
	Data []struct {
		Date string `json:"date"`
		NAV  string `json:"nav"`
	} `json:"data"`
	Status string `json:"status"`
}

// FetchSeries retrieves fund metadata and the full NAV series for a scheme.
func (c *Client) FetchSeries(ctx context.Context, schemeCode int) (*domain.SchemeData, error) {
	reqURL := fmt.Sprintf("%s/%d", c.baseURL, schemeCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: scheme %d", domain.ErrSchemeNotFound, schemeCode)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrProviderUnavailable, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}

	var result schemeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}

	// mfapi answers 200 with an empty document for unknown scheme codes.
	if result.Meta.SchemeName == "" || len(result.Data) == 0 {
		return nil, fmt.Errorf("%w: scheme %d", domain.ErrSchemeNotFound, schemeCode)
	}

	quotes := make([]domain.NAVQuote, 0, len(result.Data))
	for _, entry := range result.Data {
		date, err := dates.ParseDMY(entry.Date)
		if err != nil {
			c.log.Warn().Int("scheme", schemeCode).Str("date", entry.Date).Msg("Skipping quote with malformed date")
			continue
		}
		nav, err := decimal.NewFromString(entry.NAV)
		if err != nil {
			c.log.Warn().Int("scheme", schemeCode).Str("nav", entry.NAV).Msg("Skipping quote with malformed NAV")
			continue
		}
		quotes = append(quotes, domain.NAVQuote{Date: date, NAV: nav})
	}

	if len(quotes) == 0 {
		return nil, fmt.Errorf("%w: scheme %d has no usable quotes", domain.ErrSchemeNotFound, schemeCode)
	}

	c.log.Debug().Int("scheme", schemeCode).Int("quotes", len(quotes)).Msg("Fetched NAV series")

	return &domain.SchemeData{
		Fund: domain.Fund{
			SchemeCode:          schemeCode,
			SchemeName:          result.Meta.SchemeName,
			ISINGrowth:          result.Meta.ISINGrowth,
			ISINDivReinvestment: result.Meta.ISINDivReinvestment,
			FundHouse:           result.Meta.FundHouse,
			SchemeType:          result.Meta.SchemeType,
			SchemeCategory:      result.Meta.SchemeCategory,
		},
		Series: domain.NewNAVSeries(quotes),
	}, nil
}
