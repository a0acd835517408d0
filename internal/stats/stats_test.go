package stats

import (
	"math"
	"testing"
	"time"

	"github.com/verte-zerg/tracer/internal/model"
)

func TestSummarize(t *testing.T) {
	attempts := []model.AttemptAggregate{
		{Coverage: 1.0, Quality: true, Strays: 2, DurationMs: 30_000},
		{Coverage: 0.5, Quality: false, Strays: 6, DurationMs: 60_000},
	}
	s := Summarize(attempts)
	if s.Attempts != 2 || s.Completed != 1 {
		t.Fatalf("summary %+v", s)
	}
	if s.CompletionRate != 0.5 {
		t.Fatalf("completion rate %v, want 0.5", s.CompletionRate)
	}
	if math.Abs(s.MeanCoverage-0.75) > 1e-9 {
		t.Fatalf("mean coverage %v, want 0.75", s.MeanCoverage)
	}
	if s.MeanDurationMs != 45_000 {
		t.Fatalf("mean duration %v, want 45000", s.MeanDurationMs)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Attempts != 0 || s.CompletionRate != 0 {
		t.Fatalf("empty summary %+v", s)
	}
}

func TestMovingAverage(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	out := MovingAverage(values, 2)
	want := []float64{1, 1.5, 2.5, 3.5, 4.5}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-9 {
			t.Fatalf("index %d: %v, want %v (full: %v)", i, out[i], want[i], out)
		}
	}
	// Window of one is the identity.
	out = MovingAverage(values, 1)
	for i := range values {
		if out[i] != values[i] {
			t.Fatalf("window 1 should copy values, got %v", out)
		}
	}
}

func TestSparkline(t *testing.T) {
	line := Sparkline([]float64{0, 0.5, 1})
	if len(line) != 3 {
		t.Fatalf("sparkline length %d, want 3", len(line))
	}
	if line[0] != ' ' || line[2] != '@' {
		t.Fatalf("sparkline %q should span the character ramp", line)
	}
	flat := Sparkline([]float64{0.5, 0.5, 0.5})
	if flat != "+++" {
		t.Fatalf("flat sparkline %q, want +++", flat)
	}
}

func TestSelectWeakRegions(t *testing.T) {
	aggs := []model.RegionAggregate{
		{Region: "top side", Visited: 20, Total: 20},
		{Region: "left side", Visited: 4, Total: 20},
		{Region: "bottom side", Visited: 10, Total: 20},
	}
	weak := SelectWeakRegions(aggs, 2)
	if len(weak) != 2 || weak[0] != "left side" || weak[1] != "bottom side" {
		t.Fatalf("weak regions %v", weak)
	}
	if all := SelectWeakRegions(aggs, 0); len(all) != 3 {
		t.Fatalf("top<=0 should return every region, got %v", all)
	}
}

func TestCoverageSeries(t *testing.T) {
	now := time.Unix(0, 0)
	attempts := []model.AttemptAggregate{
		{EndedAt: now, Coverage: 0.2},
		{EndedAt: now.Add(time.Minute), Coverage: 0.9},
	}
	series := CoverageSeries(attempts)
	if len(series) != 2 || series[0] != 0.2 || series[1] != 0.9 {
		t.Fatalf("series %v", series)
	}
}
