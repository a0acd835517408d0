// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tracer/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for attempt history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			shape TEXT NOT NULL,
			canvas_width REAL NOT NULL,
			canvas_height REAL NOT NULL,
			coverage REAL NOT NULL,
			quality INTEGER NOT NULL,
			segments_visited INTEGER NOT NULL,
			total_segments INTEGER NOT NULL,
			strays INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempt_regions (
			attempt_id INTEGER NOT NULL,
			region TEXT NOT NULL,
			visited INTEGER NOT NULL,
			total INTEGER NOT NULL,
			PRIMARY KEY (attempt_id, region)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_ended_at ON attempts(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_attempt_regions_region ON attempt_regions(region);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertAttempt stores a finished attempt and its per-region coverage.
func (s *Store) InsertAttempt(ctx context.Context, stats model.AttemptStats, regions []model.RegionStats) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	quality := 0
	if stats.Quality {
		quality = 1
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO attempts (started_at, ended_at, shape, canvas_width, canvas_height, coverage, quality, segments_visited, total_segments, strays, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.StartedAt.Format(time.RFC3339Nano),
		stats.EndedAt.Format(time.RFC3339Nano),
		stats.Shape,
		stats.CanvasWidth,
		stats.CanvasHeight,
		stats.Coverage,
		quality,
		stats.SegmentsVisited,
		stats.TotalSegments,
		stats.Strays,
		stats.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(regions) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO attempt_regions (attempt_id, region, visited, total)
			 VALUES (?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, r := range regions {
			if _, err := stmt.ExecContext(ctx, id, r.Region, r.Visited, r.Total); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListAttempts returns attempt aggregates filtered by stats config.
func (s *Store) ListAttempts(ctx context.Context, cfg model.StatsConfig) ([]model.AttemptAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Shape != "" {
		clauses = append(clauses, "shape = ?")
		args = append(args, cfg.Shape)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, shape, coverage, quality, strays, duration_ms
		FROM attempts
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var attempts []model.AttemptAggregate
	for rows.Next() {
		var agg model.AttemptAggregate
		var endedAt string
		var quality int
		if err := rows.Scan(&agg.AttemptID, &endedAt, &agg.Shape, &agg.Coverage, &quality, &agg.Strays, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		agg.Quality = quality != 0
		attempts = append(attempts, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attempts, nil
}

// WeakRegions aggregates region coverage over the most recent attempts,
// surfacing the outline regions a user habitually under-traces.
func (s *Store) WeakRegions(ctx context.Context, window int, shape string) ([]model.RegionAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_attempts AS (
		SELECT id FROM attempts
		WHERE (? = '' OR shape = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT ar.region, SUM(ar.visited) AS visited, SUM(ar.total) AS total
	FROM attempt_regions ar
	JOIN recent_attempts r ON r.id = ar.attempt_id
	GROUP BY ar.region`

	rows, err := s.db.QueryContext(ctx, query, shape, shape, window)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.RegionAggregate
	for rows.Next() {
		var agg model.RegionAggregate
		if err := rows.Scan(&agg.Region, &agg.Visited, &agg.Total); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
