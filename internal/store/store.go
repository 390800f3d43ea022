// Package store archives the ranked output of each run in SQLite so
// the CLI and HTTP API can read back history. Scoring state never
// lives here; the engine owns that through its window store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/elonfeng/hotradar/internal/window"
	"github.com/elonfeng/hotradar/pkg/trend"
)

// Run is one archived engine run.
type Run struct {
	ID           string    `db:"id" json:"id"`
	RunDate      string    `db:"run_date" json:"run_date"`
	ItemCount    int       `db:"item_count" json:"item_count"`
	ClusterCount int       `db:"cluster_count" json:"cluster_count"`
	Degraded     bool      `db:"degraded" json:"degraded"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// RankedRow is one archived output row.
type RankedRow struct {
	RunID          string    `db:"run_id" json:"-"`
	Position       int       `db:"position" json:"position"`
	Title          string    `db:"title" json:"title"`
	URL            string    `db:"url" json:"url"`
	PlatformsJSON  string    `db:"platforms" json:"-"`
	Platforms      []string  `db:"-" json:"platforms"`
	RankScore      float64   `db:"rank_score" json:"rank_score"`
	FrequencyScore float64   `db:"frequency_score" json:"frequency_score"`
	KeywordScore   float64   `db:"keyword_score" json:"keyword_score"`
	FinalScore     float64   `db:"final_score" json:"final_score"`
	FirstSeen      time.Time `db:"first_seen" json:"first_seen"`
}

// ErrNoRuns is returned when the archive holds no runs yet.
var ErrNoRuns = errors.New("no runs archived")

// Store is the archive interface.
type Store interface {
	SaveRun(ctx context.Context, result *trend.Result) (*Run, error)
	LatestRun(ctx context.Context) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	ListRanked(ctx context.Context, runID string) ([]RankedRow, error)
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun archives one engine result and returns the stored run row.
func (s *SQLiteStore) SaveRun(ctx context.Context, result *trend.Result) (*Run, error) {
	run := &Run{
		ID:           uuid.NewString(),
		RunDate:      result.Date.Format(window.DateLayout),
		ItemCount:    result.ItemCount,
		ClusterCount: result.ClusterCount,
		Degraded:     result.Degraded,
		CreatedAt:    time.Now().UTC(),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin save run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, run_date, item_count, cluster_count, degraded, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.RunDate, run.ItemCount, run.ClusterCount, run.Degraded, run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	for _, item := range result.Items {
		platformsJSON, _ := json.Marshal(item.Cluster.Platforms)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ranked_items (run_id, position, title, url, platforms,
				rank_score, frequency_score, keyword_score, final_score, first_seen)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, run.ID, item.Position, item.Cluster.Title, clusterURL(item.Cluster),
			string(platformsJSON), item.Scores.Rank, item.Scores.Frequency,
			item.Scores.Keyword, item.Scores.Final, item.Cluster.FirstSeen)
		if err != nil {
			return nil, fmt.Errorf("insert ranked item %d: %w", item.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit save run: %w", err)
	}
	return run, nil
}

func (s *SQLiteStore) LatestRun(ctx context.Context) (*Run, error) {
	var run Run
	err := s.db.GetContext(ctx, &run,
		"SELECT * FROM runs ORDER BY created_at DESC, id LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return &run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []Run
	err := s.db.SelectContext(ctx, &runs,
		"SELECT * FROM runs ORDER BY created_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

func (s *SQLiteStore) ListRanked(ctx context.Context, runID string) ([]RankedRow, error) {
	var rows []RankedRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM ranked_items WHERE run_id = ? ORDER BY position", runID)
	if err != nil {
		return nil, fmt.Errorf("list ranked items %s: %w", runID, err)
	}
	for i := range rows {
		json.Unmarshal([]byte(rows[i].PlatformsJSON), &rows[i].Platforms)
	}
	return rows, nil
}

// clusterURL picks the link shown for a cluster: the URL of its
// best-ranked member.
func clusterURL(c trend.Cluster) string {
	for _, m := range c.Members {
		if m.URL != "" {
			return m.URL
		}
	}
	return ""
}
