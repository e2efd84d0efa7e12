package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// sqliteSweepInterval is how often expired rows are deleted in bulk.
const sqliteSweepInterval = time.Minute

// SQLiteBackend persists cache entries in a single SQLite file. It suits
// single-node deployments that want the cache to survive restarts without
// running a Redis. WAL mode keeps concurrent reads cheap; the connection
// pool is pinned to one connection because SQLite supports a single writer.
type SQLiteBackend struct {
	db   *sql.DB
	path string

	getStmt    *sql.Stmt
	setStmt    *sql.Stmt
	deleteStmt *sql.Stmt
	sweepStmt  *sql.Stmt

	stopCh    chan struct{}
	closeOnce sync.Once
}

// NewSQLiteBackend opens (creating if needed) the cache database at path.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite cache path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports a single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	b := &SQLiteBackend{
		db:     db,
		path:   path,
		stopCh: make(chan struct{}),
	}

	if err := b.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	if err := b.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare cache statements: %w", err)
	}

	go b.sweep()

	return b, nil
}

// initSchema creates the cache table if it does not exist.
func (b *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cache_entries (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cache_expires_at ON cache_entries(expires_at);
	`
	_, err := b.db.Exec(schema)
	return err
}

// prepareStatements pre-compiles the hot-path SQL.
func (b *SQLiteBackend) prepareStatements() error {
	var err error

	b.getStmt, err = b.db.Prepare(`SELECT value, expires_at FROM cache_entries WHERE key = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}

	b.setStmt, err = b.db.Prepare(`
		INSERT INTO cache_entries (key, value, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare set statement: %w", err)
	}

	b.deleteStmt, err = b.db.Prepare(`DELETE FROM cache_entries WHERE key = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	b.sweepStmt, err = b.db.Prepare(`DELETE FROM cache_entries WHERE expires_at < ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare sweep statement: %w", err)
	}

	return nil
}

// Get returns the value for key. An expired row counts as a miss and is
// deleted lazily.
func (b *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var expiresAt int64

	err := b.getStmt.QueryRowContext(ctx, key).Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if time.Now().Unix() >= expiresAt {
		_, _ = b.deleteStmt.ExecContext(ctx, key)
		return nil, false, nil
	}

	return value, true, nil
}

// Set stores value under key for ttl.
func (b *SQLiteBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl).Unix()
	_, err := b.setStmt.ExecContext(ctx, key, value, expiresAt)
	return err
}

// Delete removes key.
func (b *SQLiteBackend) Delete(ctx context.Context, key string) error {
	_, err := b.deleteStmt.ExecContext(ctx, key)
	return err
}

// Clear removes every entry.
func (b *SQLiteBackend) Clear(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM cache_entries`)
	return err
}

// Close stops the sweep goroutine and closes the database.
func (b *SQLiteBackend) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.stopCh)
		err = b.db.Close()
	})
	return err
}

// sweep periodically deletes expired rows until Close.
func (b *SQLiteBackend) sweep() {
	ticker := time.NewTicker(sqliteSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = b.sweepStmt.Exec(time.Now().Unix())
		case <-b.stopCh:
			return
		}
	}
}
