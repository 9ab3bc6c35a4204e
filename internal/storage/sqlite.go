// Package storage provides SQLite-based persistence for play results.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/termania/internal/judge"
	"github.com/vovakirdan/termania/internal/scoring"
)

// Store manages the SQLite database connection for results history.
type Store struct {
	db *sql.DB
}

// Result is one recorded play.
type Result struct {
	ID         int64
	BeatmapKey string
	Title      string
	KeyCount   int
	Score      int64
	Accuracy   float64
	MaxCombo   int
	Grade      scoring.Grade
	Counts     [judge.NumTiers]int
	MeanError  float64
	Failed     bool
	CreatedAt  time.Time
}

// NewResult builds a result row from a session summary.
func NewResult(key, title string, keyCount int, s scoring.Summary) Result {
	return Result{
		BeatmapKey: key,
		Title:      title,
		KeyCount:   keyCount,
		Score:      s.Score,
		Accuracy:   s.Accuracy,
		MaxCombo:   s.MaxCombo,
		Grade:      s.Grade,
		Counts:     s.Counts,
		MeanError:  s.MeanError,
		Failed:     s.Failed,
	}
}

// BeatmapStats aggregates the results for one beatmap.
type BeatmapStats struct {
	BeatmapKey   string
	Plays        int
	BestScore    int64
	BestAccuracy float64
	LastPlayed   time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			beatmap_key TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			key_count INTEGER NOT NULL,
			score INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			max_combo INTEGER NOT NULL,
			grade TEXT NOT NULL,
			marv INTEGER NOT NULL DEFAULT 0,
			perf INTEGER NOT NULL DEFAULT 0,
			great INTEGER NOT NULL DEFAULT 0,
			good INTEGER NOT NULL DEFAULT 0,
			ok INTEGER NOT NULL DEFAULT 0,
			miss INTEGER NOT NULL DEFAULT 0,
			mean_error REAL NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_results_beatmap ON results(beatmap_key);
		CREATE INDEX IF NOT EXISTS idx_results_top ON results(beatmap_key, score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveResult records a play. Returns the ID of the inserted record.
func (s *Store) SaveResult(r Result) (int64, error) {
	c := r.Counts
	res, err := s.db.Exec(
		`INSERT INTO results
		 (beatmap_key, title, key_count, score, accuracy, max_combo, grade,
		  marv, perf, great, good, ok, miss, mean_error, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.BeatmapKey, r.Title, r.KeyCount, r.Score, r.Accuracy, r.MaxCombo, string(r.Grade),
		c[judge.Marv], c[judge.Perf], c[judge.Great], c[judge.Good], c[judge.OK], c[judge.Miss],
		r.MeanError, r.Failed,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save result: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

const resultColumns = `id, beatmap_key, title, key_count, score, accuracy, max_combo, grade,
	marv, perf, great, good, ok, miss, mean_error, failed, created_at`

// TopResults retrieves the best results for a beatmap, highest score first.
func (s *Store) TopResults(beatmapKey string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT `+resultColumns+`
		 FROM results
		 WHERE beatmap_key = ?
		 ORDER BY score DESC, accuracy DESC, id ASC
		 LIMIT ?`,
		beatmapKey, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query results: %w", err)
	}
	return scanResults(rows)
}

// RecentResults retrieves the latest plays across all beatmaps.
func (s *Store) RecentResults(limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT `+resultColumns+`
		 FROM results
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query results: %w", err)
	}
	return scanResults(rows)
}

// BestResult returns the highest scoring play for a beatmap, or nil if
// there is none.
func (s *Store) BestResult(beatmapKey string) (*Result, error) {
	top, err := s.TopResults(beatmapKey, 1)
	if err != nil {
		return nil, err
	}
	if len(top) == 0 {
		return nil, nil
	}
	return &top[0], nil
}

// Stats aggregates the plays for a beatmap.
func (s *Store) Stats(beatmapKey string) (*BeatmapStats, error) {
	stats := &BeatmapStats{BeatmapKey: beatmapKey}
	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(MAX(accuracy), 0), MAX(created_at)
		 FROM results WHERE beatmap_key = ?`,
		beatmapKey,
	).Scan(&stats.Plays, &stats.BestScore, &stats.BestAccuracy, &lastPlayed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get beatmap stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)
	return stats, nil
}

// ClearResults deletes all results for a beatmap.
func (s *Store) ClearResults(beatmapKey string) error {
	_, err := s.db.Exec("DELETE FROM results WHERE beatmap_key = ?", beatmapKey)
	if err != nil {
		return fmt.Errorf("storage: cannot clear results: %w", err)
	}
	return nil
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var grade string
		var createdAt any
		c := &r.Counts
		if err := rows.Scan(
			&r.ID, &r.BeatmapKey, &r.Title, &r.KeyCount, &r.Score, &r.Accuracy, &r.MaxCombo, &grade,
			&c[judge.Marv], &c[judge.Perf], &c[judge.Great], &c[judge.Good], &c[judge.OK], &c[judge.Miss],
			&r.MeanError, &r.Failed, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.Grade = scoring.Grade(grade)
		r.CreatedAt = parseTime(createdAt)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return results, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
