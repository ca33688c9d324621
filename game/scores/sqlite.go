package scores

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/tilemerge/game/service"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS scores (
	id          TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL,
	game_id     TEXT NOT NULL,
	config_name TEXT NOT NULL,
	grid_size   INTEGER NOT NULL,
	score       INTEGER NOT NULL,
	best_tile   INTEGER NOT NULL,
	moves       INTEGER NOT NULL,
	finished    INTEGER NOT NULL,
	recorded_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS scores_rank ON scores (score DESC, recorded_at ASC);
`

// SQLiteStore persists the leaderboard in a SQLite file
type SQLiteStore struct {
	sqlDB *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and applies the schema
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Record inserts one score row. Recording the same ID twice is an error.
func (s *SQLiteStore) Record(ctx context.Context, entry *service.ScoreEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if err := validateEntry(entry); err != nil {
		return err
	}

	finished := 0
	if entry.Finished {
		finished = 1
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO scores (
		   id, session_id, game_id, config_name, grid_size,
		   score, best_tile, moves, finished, recorded_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.SessionID,
		entry.GameID,
		entry.ConfigName,
		entry.GridSize,
		int64(entry.Score),
		int64(entry.BestTile),
		entry.Moves,
		finished,
		toMillis(entry.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

// Top returns up to limit entries in leaderboard order. A non-positive limit
// returns every entry.
func (s *SQLiteStore) Top(ctx context.Context, limit int) ([]*service.ScoreEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, session_id, game_id, config_name, grid_size,
		        score, best_tile, moves, finished, recorded_at
		   FROM scores
		  ORDER BY score DESC, recorded_at ASC
		  LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	entries := []*service.ScoreEntry{}
	for rows.Next() {
		var (
			e          service.ScoreEntry
			score      int64
			bestTile   int64
			finished   int
			recordedAt int64
		)
		if err := rows.Scan(
			&e.ID,
			&e.SessionID,
			&e.GameID,
			&e.ConfigName,
			&e.GridSize,
			&score,
			&bestTile,
			&e.Moves,
			&finished,
			&recordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		e.Score = uint64(score)
		e.BestTile = uint32(bestTile)
		e.Finished = finished != 0
		e.RecordedAt = fromMillis(recordedAt)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scores: %w", err)
	}
	return entries, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
