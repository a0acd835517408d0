// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"strings"

	"github.com/verte-zerg/tracer/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates attempt history into headline metrics.
type Summary struct {
	Attempts       int
	Completed      int
	CompletionRate float64
	MeanCoverage   float64
	MeanDurationMs float64
	MeanStrays     float64
}

// Summarize computes headline metrics over a set of attempts.
func Summarize(attempts []model.AttemptAggregate) Summary {
	var s Summary
	s.Attempts = len(attempts)
	if s.Attempts == 0 {
		return s
	}
	var coverage, duration, strays float64
	for _, a := range attempts {
		if a.Quality {
			s.Completed++
		}
		coverage += a.Coverage
		duration += float64(a.DurationMs)
		strays += float64(a.Strays)
	}
	n := float64(s.Attempts)
	s.CompletionRate = float64(s.Completed) / n
	s.MeanCoverage = coverage / n
	s.MeanDurationMs = duration / n
	s.MeanStrays = strays / n
	return s
}

// CoverageSeries extracts the coverage ratio of each attempt in order.
func CoverageSeries(attempts []model.AttemptAggregate) []float64 {
	out := make([]float64, len(attempts))
	for i, a := range attempts {
		out[i] = a.Coverage
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx > len(sparkChars)-1 {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
