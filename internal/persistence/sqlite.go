package persistence

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/spec-kit/ticket-tracker/internal/config"
)

var sqlitePragmas = []string{
	"PRAGMA busy_timeout=5000",
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
	"PRAGMA temp_store=MEMORY",
}

// SQLite wraps a zombiezen connection pool over a single database file.
// Connections are not safe for concurrent use: Take one, use it, Put it back.
type SQLite struct {
	pool *sqlitex.Pool
	path string
}

// NewSQLite opens the database file, applies pragmas to every connection
// and brings the schema up to date.
func NewSQLite(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (*SQLite, error) {
	if cfg.SQLitePath == "" {
		return nil, errors.New("sqlite path not provided")
	}
	poolSize := cfg.SQLitePoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := sqlitex.NewPool(cfg.SQLitePath, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareSQLiteConn,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
	}
	db := &SQLite{pool: pool, path: cfg.SQLitePath}

	conn, err := db.Take(ctx)
	if err != nil {
		_ = pool.Close()
		return nil, err
	}
	err = runSQLiteMigrations(conn, logger)
	db.Put(conn)
	if err != nil {
		_ = pool.Close()
		return nil, err
	}

	logger.Info("opened sqlite store", zap.String("path", cfg.SQLitePath), zap.Int("pool_size", poolSize))
	return db, nil
}

func prepareSQLiteConn(conn *sqlite.Conn) error {
	for _, pragma := range sqlitePragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}

// Take borrows a connection, blocking until one is free or ctx is done.
func (s *SQLite) Take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlite take: %w", err)
	}
	return conn, nil
}

// Put returns a connection to the pool.
func (s *SQLite) Put(conn *sqlite.Conn) {
	s.pool.Put(conn)
}

// Ping runs a trivial query on a pooled connection.
func (s *SQLite) Ping(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return errors.New("sqlite pool not configured")
	}
	conn, err := s.Take(ctx)
	if err != nil {
		return err
	}
	defer s.Put(conn)
	return sqlitex.ExecuteTransient(conn, "SELECT 1", nil)
}

// Close closes every connection in the pool.
func (s *SQLite) Close() {
	if s != nil && s.pool != nil {
		_ = s.pool.Close()
	}
}
