package stats

import (
	"sort"

	"github.com/verte-zerg/tracer/internal/model"
)

// SelectWeakRegions selects the least-covered outline regions from
// aggregates, worst first.
func SelectWeakRegions(aggs []model.RegionAggregate, top int) []string {
	if len(aggs) == 0 {
		return nil
	}
	candidates := make([]model.RegionAggregate, len(aggs))
	copy(candidates, aggs)
	sort.Slice(candidates, func(i, j int) bool {
		ri := regionRatio(candidates[i])
		rj := regionRatio(candidates[j])
		if ri == rj {
			return candidates[i].Region < candidates[j].Region
		}
		return ri < rj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]string, 0, top)
	for i := 0; i < top; i++ {
		out = append(out, candidates[i].Region)
	}
	return out
}

func regionRatio(agg model.RegionAggregate) float64 {
	if agg.Total == 0 {
		return 1.0
	}
	return float64(agg.Visited) / float64(agg.Total)
}
