// Package seriesload fetches NAV series for a set of schemes within one
// request. Fetches are de-duplicated per scheme code and issued concurrently;
// each scheme's series is independent so no shared state is mutated beyond
// the result map.
package seriesload

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/navtrail/navtrail-backend/internal/domain"
)

const defaultFetchTimeout = 10 * time.Second

// Loader loads NAV series from the external provider once per distinct
// scheme code. The result map is request-scoped and must not be cached
// across requests.
type Loader struct {
	Provider     domain.NAVProvider
	FetchTimeout time.Duration

	log zerolog.Logger
}

// NewLoader creates a new Loader with the default per-fetch timeout.
func NewLoader(provider domain.NAVProvider, log zerolog.Logger) *Loader {
	return &Loader{
		Provider:     provider,
		FetchTimeout: defaultFetchTimeout,
		log:          log.With().Str("component", "seriesload").Logger(),
	}
}

// Load fetches the series for every distinct scheme code. Schemes whose
// fetch fails (unknown scheme, provider outage, timeout) are absent from
// the result; callers apply their own soft-fail policy. If ctx is
// cancelled the whole load aborts and no partial result is returned.
func (l *Loader) Load(ctx context.Context, schemeCodes []int) (map[int]*domain.NAVSeries, error) {
	distinct := make([]int, 0, len(schemeCodes))
	seen := make(map[int]struct{}, len(schemeCodes))
	for _, code := range schemeCodes {
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		distinct = append(distinct, code)
	}

	var mu sync.Mutex
	series := make(map[int]*domain.NAVSeries, len(distinct))

	g, gctx := errgroup.WithContext(ctx)
	for _, code := range distinct {
		code := code
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, l.FetchTimeout)
			defer cancel()

			data, err := l.Provider.FetchSeries(fetchCtx, code)
			if err != nil {
				// Request abort wins over any per-scheme failure.
				if gctx.Err() != nil {
					return gctx.Err()
				}
				if schemeUnavailable(err) {
					l.log.Warn().Err(err).Int("scheme", code).Msg("NAV series unavailable, skipping scheme")
					return nil
				}
				return err
			}

			mu.Lock()
			series[code] = data.Series
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Partial results must never survive a cancelled request.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return series, nil
}

// schemeUnavailable reports whether err is a per-scheme soft failure that
// the valuation and history engines recover from locally.
func schemeUnavailable(err error) bool {
	return errors.Is(err, domain.ErrSchemeNotFound) ||
		errors.Is(err, domain.ErrProviderUnavailable) ||
		errors.Is(err, context.DeadlineExceeded)
}
