// Package store provides the SQLite-backed surf break lookup store.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/lucas-hudsn/wavereader/internal/models"
)

// SQLiteStore implements BreakStore over a SQLite database seeded by the
// offline ingestion process.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// Open opens the surf break database and ensures the schema and lookup
// indexes exist. The name index is NOCASE so lookups match the
// case-insensitive contract without scanning.
func Open(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := ensureSchema(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

func ensureSchema(sqlDB *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS surf_breaks (
		   id INTEGER PRIMARY KEY AUTOINCREMENT,
		   name TEXT NOT NULL COLLATE NOCASE,
		   description TEXT NOT NULL DEFAULT '',
		   state TEXT NOT NULL DEFAULT '',
		   latitude REAL NOT NULL DEFAULT 0,
		   longitude REAL NOT NULL DEFAULT 0,
		   wave_direction TEXT NOT NULL DEFAULT '',
		   bottom_type TEXT NOT NULL DEFAULT '',
		   break_type TEXT NOT NULL DEFAULT '',
		   skill_level TEXT NOT NULL DEFAULT '',
		   ideal_wind TEXT NOT NULL DEFAULT '',
		   ideal_tide TEXT NOT NULL DEFAULT '',
		   ideal_swell_size TEXT NOT NULL DEFAULT ''
		 )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_surf_breaks_name ON surf_breaks(name COLLATE NOCASE)`,
		`CREATE INDEX IF NOT EXISTS idx_surf_breaks_state ON surf_breaks(state)`,
	}
	for _, stmt := range stmts {
		if _, err := sqlDB.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping implements BreakStore.Ping.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// GetByName implements BreakStore.GetByName.
func (s *SQLiteStore) GetByName(ctx context.Context, name string) (models.SurfBreak, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, description, state, latitude, longitude,
		        wave_direction, bottom_type, break_type, skill_level,
		        ideal_wind, ideal_tide, ideal_swell_size
		   FROM surf_breaks WHERE name = ? COLLATE NOCASE`,
		strings.TrimSpace(name),
	)
	var b models.SurfBreak
	err := row.Scan(
		&b.ID, &b.Name, &b.Description, &b.State, &b.Latitude, &b.Longitude,
		&b.WaveDirection, &b.BottomType, &b.BreakType, &b.SkillLevel,
		&b.IdealWind, &b.IdealTide, &b.IdealSwellSize,
	)
	if err == sql.ErrNoRows {
		return models.SurfBreak{}, ErrBreakNotFound
	}
	if err != nil {
		return models.SurfBreak{}, fmt.Errorf("query break %q: %w", name, err)
	}
	return b, nil
}

// ListStates implements BreakStore.ListStates.
func (s *SQLiteStore) ListStates(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT DISTINCT state FROM surf_breaks ORDER BY state`)
	if err != nil {
		return nil, fmt.Errorf("query states: %w", err)
	}
	defer rows.Close()

	states := []string{}
	for rows.Next() {
		var state string
		if err := rows.Scan(&state); err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		states = append(states, state)
	}
	return states, rows.Err()
}

// ListBreaks implements BreakStore.ListBreaks.
func (s *SQLiteStore) ListBreaks(ctx context.Context, limit, offset int) ([]models.BreakSummary, int, error) {
	var total int
	if err := s.sqlDB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM surf_breaks`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count breaks: %w", err)
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, state, latitude, longitude, skill_level
		   FROM surf_breaks ORDER BY state, name LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query breaks: %w", err)
	}
	defer rows.Close()

	breaks := []models.BreakSummary{}
	for rows.Next() {
		var b models.BreakSummary
		if err := rows.Scan(&b.ID, &b.Name, &b.State, &b.Latitude, &b.Longitude, &b.SkillLevel); err != nil {
			return nil, 0, fmt.Errorf("scan break: %w", err)
		}
		breaks = append(breaks, b)
	}
	return breaks, total, rows.Err()
}

// ListBreakNamesByState implements BreakStore.ListBreakNamesByState.
func (s *SQLiteStore) ListBreakNamesByState(ctx context.Context, state string) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT name FROM surf_breaks WHERE state = ? ORDER BY name`, state)
	if err != nil {
		return nil, fmt.Errorf("query breaks for state %q: %w", state, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan break name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
