// Package model defines shared data structures.
package model

import "time"

// Config defines trace-practice settings.
type Config struct {
	Shape        string
	CanvasWidth  float64
	CanvasHeight float64

	PathTolerance   float64
	ProximityRadius float64
	CornerRadius    float64

	Narrator bool
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Shape       string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// AttemptStats captures a finished trace attempt. Only the summary is
// recorded; the touch stream itself is never persisted.
type AttemptStats struct {
	StartedAt       time.Time
	EndedAt         time.Time
	Shape           string
	CanvasWidth     float64
	CanvasHeight    float64
	Coverage        float64
	Quality         bool
	SegmentsVisited int
	TotalSegments   int
	Strays          int
	DurationMs      int64
}

// RegionStats stores per-region coverage for an attempt.
type RegionStats struct {
	Region  string
	Visited int
	Total   int
}

// AttemptAggregate summarizes an attempt for reporting.
type AttemptAggregate struct {
	AttemptID  int64
	EndedAt    time.Time
	Shape      string
	Coverage   float64
	Quality    bool
	Strays     int
	DurationMs int64
}

// RegionAggregate aggregates region coverage across attempts.
type RegionAggregate struct {
	Region  string
	Visited int
	Total   int
}
