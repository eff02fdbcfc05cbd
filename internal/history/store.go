// Package history persists watch session records to a local SQLite database.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"testwatch/internal/logging"
)

// Session is one recorded watch session
type Session struct {
	ID        string
	Target    string
	StartedAt time.Time
	EndedAt   *time.Time
	Cycles    int
	Failures  int
	Stopped   bool
	Success   bool
}

// Store wraps the session-history database
type Store struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

// Open opens or creates the history database at .testwatch/history.db.
// path overrides the default location when non-empty; relative paths are
// anchored at repoRoot.
func Open(repoRoot, path string, logger *logging.Logger) (*Store, error) {
	dbPath := path
	if dbPath == "" {
		dbPath = filepath.Join(".testwatch", "history.db")
	}
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(repoRoot, dbPath)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{conn: conn, logger: logger, dbPath: dbPath}
	if err := s.initializeSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return s, nil
}

func (s *Store) initializeSchema() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			target     TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			ended_at   INTEGER,
			cycles     INTEGER NOT NULL DEFAULT 0,
			failures   INTEGER NOT NULL DEFAULT 0,
			stopped    INTEGER NOT NULL DEFAULT 0,
			success    INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at DESC);
	`)
	return err
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the database file location
func (s *Store) Path() string {
	return s.dbPath
}

// RecordStart inserts a new session row and returns its id
func (s *Store) RecordStart(target string, startedAt time.Time) (string, error) {
	id := uuid.New().String()
	_, err := s.conn.Exec(
		`INSERT INTO sessions (id, target, started_at) VALUES (?, ?, ?)`,
		id, target, startedAt.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record session start: %w", err)
	}
	s.logger.Debug("Recorded session start", map[string]interface{}{
		"sessionId": id,
		"target":    target,
	})
	return id, nil
}

// RecordEnd finalizes a session row with its outcome
func (s *Store) RecordEnd(id string, endedAt time.Time, cycles, failures int, stopped, success bool) error {
	_, err := s.conn.Exec(
		`UPDATE sessions SET ended_at = ?, cycles = ?, failures = ?, stopped = ?, success = ? WHERE id = ?`,
		endedAt.Unix(), cycles, failures, boolToInt(stopped), boolToInt(success), id,
	)
	if err != nil {
		return fmt.Errorf("failed to record session end: %w", err)
	}
	return nil
}

// ListRecent returns up to limit sessions, most recent first
func (s *Store) ListRecent(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.conn.Query(
		`SELECT id, target, started_at, ended_at, cycles, failures, stopped, success
		 FROM sessions ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			sess             Session
			started          int64
			ended            sql.NullInt64
			stopped, success int
		)
		if err := rows.Scan(&sess.ID, &sess.Target, &started, &ended, &sess.Cycles, &sess.Failures, &stopped, &success); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sess.StartedAt = time.Unix(started, 0)
		if ended.Valid {
			t := time.Unix(ended.Int64, 0)
			sess.EndedAt = &t
		}
		sess.Stopped = stopped != 0
		sess.Success = success != 0
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
