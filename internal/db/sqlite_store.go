// Package db persists assessment results in SQLite, one row per session.
// Both the cgo driver (sqlite3) and the pure Go driver (sqlite) are
// registered; the caller picks one by name.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/soaringjerry/SheHuMaan/internal/results"
)

// Driver names as registered with database/sql.
const (
	DriverCgo    = "sqlite3"
	DriverPureGo = "sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// DSN builds the connection string for driver. The busy timeout is set per
// connection, so it goes in the DSN rather than a PRAGMA.
func DSN(driver, path string) (string, error) {
	p := filepath.ToSlash(path)
	switch driver {
	case DriverCgo:
		return fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", p), nil
	case DriverPureGo:
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", p), nil
	}
	return "", fmt.Errorf("unsupported sqlite driver %q", driver)
}

// SQLiteStore is a results.Provider backed by the results table.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time
}

// Open creates the database file if needed, applies migrations and returns
// the store. migrationsDir may be empty to use the embedded migrations.
func Open(ctx context.Context, driver, path, migrationsDir string, log *zap.Logger) (*SQLiteStore, error) {
	dsn, err := DSN(driver, path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	sqlDB, err := openDB(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s, err := NewSQLiteStore(sqlDB, log)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if err := RunMigrations(ctx, sqlDB, migrationsDir); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

// NewSQLiteStore wraps an open database. The results table must exist.
func NewSQLiteStore(db *sql.DB, log *zap.Logger) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	if log == nil {
		log = zap.NewNop()
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db, log: log, now: time.Now}, nil
}

func (s *SQLiteStore) ForSession(sessionID string) results.Store {
	return &sessionStore{parent: s, sessionID: sessionID}
}

func (s *SQLiteStore) Forget(sessionID string) error {
	return s.ForSession(sessionID).Clear(context.Background())
}

// PurgeBefore deletes records saved before cutoff and returns how many.
func (s *SQLiteStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE saved_at < ?`, cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("purge results: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

type sessionStore struct {
	parent    *SQLiteStore
	sessionID string
}

func (st *sessionStore) Load(ctx context.Context) (*results.Result, error) {
	var payload string
	err := st.parent.db.QueryRowContext(ctx, `SELECT payload FROM results WHERE session_id = ?`, st.sessionID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, results.ErrAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("load result: %w", err)
	}
	r, err := results.Decode([]byte(payload))
	if err != nil {
		st.parent.log.Warn("Discarding malformed stored result", zap.String("session_id", st.sessionID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", results.ErrAbsent, err)
	}
	return r, nil
}

func (st *sessionStore) Save(ctx context.Context, r *results.Result) error {
	b, err := results.Encode(r)
	if err != nil {
		return err
	}
	_, err = st.parent.db.ExecContext(ctx, `
		INSERT INTO results (session_id, payload, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		st.sessionID, string(b), st.parent.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func (st *sessionStore) Clear(ctx context.Context) error {
	if _, err := st.parent.db.ExecContext(ctx, `DELETE FROM results WHERE session_id = ?`, st.sessionID); err != nil {
		return fmt.Errorf("clear result: %w", err)
	}
	return nil
}

var (
	_ results.Provider = (*SQLiteStore)(nil)
	_ results.Store    = (*sessionStore)(nil)
)
