package schedule

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"go.uber.org/zap"
)

// SQLiteStore persists year records in a local SQLite database so the engine
// keeps answering after restarts and without a network.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS schedule_years (
	year INTEGER PRIMARY KEY,
	overrides TEXT NOT NULL,
	fetched_at TEXT NOT NULL
)`

// OpenSQLiteStore opens (or creates) the database at path.
// The caller is responsible for calling Close when done.
func OpenSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	// WAL lets readers proceed during a refresh write; the busy timeout
	// covers another process holding the write lock briefly.
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open schedule store: %w", err)
	}

	// SQLite allows one writer; a single connection avoids lock errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schedule store: %w", err)
	}

	logger.Info("Schedule store opened", zap.String("path", path))

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get returns the cached record for a year, or ErrMissing.
func (s *SQLiteStore) Get(year int) (*Record, error) {
	var overridesJSON, fetchedAt string
	err := s.db.QueryRow(
		"SELECT overrides, fetched_at FROM schedule_years WHERE year = ?", year,
	).Scan(&overridesJSON, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMissing
	}
	if err != nil {
		return nil, fmt.Errorf("query schedule for %d: %w", year, err)
	}

	record := &Record{Year: year}
	if err := json.Unmarshal([]byte(overridesJSON), &record.Overrides); err != nil {
		return nil, fmt.Errorf("decode schedule for %d: %w", year, err)
	}
	record.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("decode fetch time for %d: %w", year, err)
	}

	return record, nil
}

// Put replaces the record for record.Year in a single statement, so a
// concurrent Get sees either the old record or the new one, never a mix.
func (s *SQLiteStore) Put(record *Record) error {
	overridesJSON, err := json.Marshal(record.Overrides)
	if err != nil {
		return fmt.Errorf("encode schedule for %d: %w", record.Year, err)
	}

	_, err = s.db.Exec(
		"REPLACE INTO schedule_years (year, overrides, fetched_at) VALUES (?, ?, ?)",
		record.Year, string(overridesJSON), record.FetchedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store schedule for %d: %w", record.Year, err)
	}

	s.logger.Info("Schedule record stored",
		zap.Int("year", record.Year),
		zap.Int("overrides", len(record.Overrides)))

	return nil
}

// Years lists the years with a cached record, ascending.
func (s *SQLiteStore) Years() ([]int, error) {
	rows, err := s.db.Query("SELECT year FROM schedule_years ORDER BY year")
	if err != nil {
		return nil, fmt.Errorf("list schedule years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, fmt.Errorf("scan schedule year: %w", err)
		}
		years = append(years, year)
	}
	return years, rows.Err()
}
