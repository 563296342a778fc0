package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Fund holds scheme metadata cached from the NAV provider.
type Fund struct {
	SchemeCode          int     `json:"schemeCode"`
	SchemeName          string  `json:"schemeName"`
	ISINGrowth          *string `json:"isinGrowth,omitempty"`
	ISINDivReinvestment *string `json:"isinDivReinvestment,omitempty"`
	FundHouse           *string `json:"fundHouse,omitempty"`
	SchemeType          *string `json:"schemeType,omitempty"`
	SchemeCategory      *string `json:"schemeCategory,omitempty"`
}

// NAVQuote is a single (date, NAV) point in a scheme's series.
type NAVQuote struct {
	Date time.Time       `json:"date"`
	NAV  decimal.Decimal `json:"nav"`
}

// NAVSeries is a scheme's NAV history, held sorted ascending by date.
// Provider order is unspecified (usually most-recent-first), so the
// constructor always sorts.
type NAVSeries struct {
	quotes []NAVQuote
}

// NewNAVSeries builds a series from quotes in any order.
func NewNAVSeries(quotes []NAVQuote) *NAVSeries {
	sorted := make([]NAVQuote, len(quotes))
	copy(sorted, quotes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return &NAVSeries{quotes: sorted}
}

// Len returns the number of quotes in the series.
func (s *NAVSeries) Len() int {
	return len(s.quotes)
}

// Latest returns the most recent quote. ok is false for an empty series.
func (s *NAVSeries) Latest() (NAVQuote, bool) {
	if len(s.quotes) == 0 {
		return NAVQuote{}, false
	}
	return s.quotes[len(s.quotes)-1], true
}

// NavOn returns the quote with the latest date at or before d (carry-forward).
// ok is false when every quote in the series postdates d.
func (s *NAVSeries) NavOn(d time.Time) (NAVQuote, bool) {
	// First index whose date is strictly after d; the answer is the entry
	// just before it.
	idx := sort.Search(len(s.quotes), func(i int) bool {
		return s.quotes[i].Date.After(d)
	})
	if idx == 0 {
		return NAVQuote{}, false
	}
	return s.quotes[idx-1], true
}

// Recent returns the n most recent quotes, newest first, mirroring the
// provider's native ordering for display.
func (s *NAVSeries) Recent(n int) []NAVQuote {
	if n > len(s.quotes) {
		n = len(s.quotes)
	}
	out := make([]NAVQuote, 0, n)
	for i := len(s.quotes) - 1; i >= len(s.quotes)-n; i-- {
		out = append(out, s.quotes[i])
	}
	return out
}

// SchemeData is one provider fetch: fund metadata plus the full NAV series.
type SchemeData struct {
	Fund   Fund
	Series *NAVSeries
}
