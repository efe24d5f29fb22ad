package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// kvSchema holds every adapter key in a single table. updated_at is RFC3339
// text, matching the engine's document stamps.
const kvSchema = `CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    updated_at TEXT NOT NULL
);`

// SQLite persists keys in <dataDir>/<namespace>.db. Reads that fail for any
// reason other than a missing row degrade to absent, so one damaged row
// cannot wedge the store; writes surface their errors.
type SQLite struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	logger *zap.SugaredLogger
	closed bool
}

// OpenSQLite creates dataDir when needed, opens or creates the database
// file, and ensures the schema exists.
func OpenSQLite(dataDir, namespace string, logger *zap.SugaredLogger) (*SQLite, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if dataDir == "" {
		dataDir = "."
	}
	if namespace == "" {
		namespace = types.DefaultNamespace
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	path := filepath.Join(dataDir, namespace+".db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure %s: %w", path, err)
	}
	if _, err := db.Exec(kvSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLite{db: db, path: path, logger: logger}, nil
}

// Get implements types.StorageAdapter.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, types.ErrAdapterClosed
	}
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, types.ErrKeyNotFound
	case err != nil:
		s.logger.Warnw("sqlite read failed, treating key as absent", "key", key, "error", err)
		return nil, types.ErrKeyNotFound
	}
	return value, nil
}

// Set implements types.StorageAdapter.
func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.ErrAdapterClosed
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete implements types.StorageAdapter. Absent keys are ignored.
func (s *SQLite) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.ErrAdapterClosed
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Keys implements types.StorageAdapter. Like Get, enumeration fails open:
// a scan error is logged and the keys read so far are returned.
func (s *SQLite) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, types.ErrAdapterClosed
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM kv WHERE key LIKE ? ESCAPE '\' ORDER BY key`, likePrefix(prefix))
	if err != nil {
		s.logger.Warnw("sqlite key scan failed", "prefix", prefix, "error", err)
		return []string{}, nil
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			s.logger.Warnw("sqlite key scan failed", "prefix", prefix, "error", err)
			break
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		s.logger.Warnw("sqlite key scan failed", "prefix", prefix, "error", err)
	}
	return keys, nil
}

// Clear implements types.StorageAdapter.
func (s *SQLite) Clear(ctx context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.ErrAdapterClosed
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM kv WHERE key LIKE ? ESCAPE '\'`, likePrefix(prefix)); err != nil {
		return fmt.Errorf("clear %s: %w", prefix, err)
	}
	return nil
}

// Close implements types.StorageAdapter. Close is idempotent.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// likePrefix turns a literal prefix into a LIKE pattern. Reserved keys
// start with an underscore, which LIKE would otherwise treat as a wildcard.
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
