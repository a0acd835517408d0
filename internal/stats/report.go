package stats

import (
	"context"

	"github.com/verte-zerg/tracer/internal/model"
	"github.com/verte-zerg/tracer/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Attempts    []model.AttemptAggregate
	Summary     Summary
	WeakRegions []model.RegionAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	attempts, err := st.ListAttempts(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(attempts) > cfg.Last {
		attempts = attempts[len(attempts)-cfg.Last:]
	}

	window := cfg.CurveWindow
	if window <= 0 {
		window = len(attempts)
	}
	weak, err := st.WeakRegions(ctx, window, cfg.Shape)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Attempts:    attempts,
		Summary:     Summarize(attempts),
		WeakRegions: weak,
	}, nil
}
