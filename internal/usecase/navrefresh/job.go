// Package navrefresh implements the scheduled job that refreshes cached
// NAVs for every scheme held by at least one user.
package navrefresh

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/navtrail/navtrail-backend/internal/domain"
)

const runTimeout = 5 * time.Minute

// Job refreshes fund metadata and latest NAVs for all held schemes. A
// scheme that fails to refresh is logged and skipped; the job only fails
// when no scheme could be refreshed at all.
type Job struct {
	PurchaseRepo domain.PurchaseRepository
	FundRepo     domain.FundRepository
	NAVRepo      domain.NAVRepository
	Provider     domain.NAVProvider

	log zerolog.Logger
}

// NewJob creates a new NAV refresh job.
func NewJob(
	purchaseRepo domain.PurchaseRepository,
	fundRepo domain.FundRepository,
	navRepo domain.NAVRepository,
	provider domain.NAVProvider,
	log zerolog.Logger,
) *Job {
	return &Job{
		PurchaseRepo: purchaseRepo,
		FundRepo:     fundRepo,
		NAVRepo:      navRepo,
		Provider:     provider,
		log:          log.With().Str("component", "navrefresh").Logger(),
	}
}

// Name returns the job identifier used in scheduler logs.
func (j *Job) Name() string {
	return "nav-refresh"
}

// Run refreshes every held scheme once.
func (j *Job) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	return j.Refresh(ctx)
}

// Refresh fetches the current series for every distinct held scheme and
// stores the metadata, the latest quote and a history entry for it.
func (j *Job) Refresh(ctx context.Context) error {
	codes, err := j.PurchaseRepo.SchemeCodes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list held schemes: %w", err)
	}
	if len(codes) == 0 {
		j.log.Info().Msg("No held schemes, nothing to refresh")
		return nil
	}

	refreshed := 0
	for _, code := range codes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := j.refreshScheme(ctx, code); err != nil {
			j.log.Error().Err(err).Int("schemeCode", code).Msg("Failed to refresh scheme")
			continue
		}
		refreshed++
	}

	j.log.Info().
		Int("refreshed", refreshed).
		Int("total", len(codes)).
		Msg("NAV refresh finished")

	if refreshed == 0 {
		return fmt.Errorf("all %d schemes failed to refresh", len(codes))
	}
	return nil
}

func (j *Job) refreshScheme(ctx context.Context, schemeCode int) error {
	data, err := j.Provider.FetchSeries(ctx, schemeCode)
	if err != nil {
		return err
	}

	latest, ok := data.Series.Latest()
	if !ok {
		return fmt.Errorf("%w: scheme %d has no quotes", domain.ErrSchemeNotFound, schemeCode)
	}

	if err := j.FundRepo.Upsert(ctx, &data.Fund); err != nil {
		return fmt.Errorf("failed to store fund metadata: %w", err)
	}
	if err := j.NAVRepo.UpsertLatest(ctx, schemeCode, latest); err != nil {
		return fmt.Errorf("failed to store latest nav: %w", err)
	}
	if err := j.NAVRepo.AppendHistory(ctx, schemeCode, latest); err != nil {
		return fmt.Errorf("failed to store nav history: %w", err)
	}
	return nil
}
