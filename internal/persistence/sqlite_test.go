package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/spec-kit/ticket-tracker/internal/config"
)

func TestNewSQLiteAppliesMigrationsOnce(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	cfg := config.StoreConfig{SQLitePath: filepath.Join(t.TempDir(), "tickets.db"), SQLitePoolSize: 2}

	first, err := NewSQLite(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := first.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	first.Close()

	second, err := NewSQLite(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	conn, err := second.Take(ctx)
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	defer second.Put(conn)

	count := 0
	err = sqlitex.Execute(conn, `SELECT COUNT(*) FROM schema_migrations`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			count = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 1 {
		t.Fatalf("schema_migrations rows = %d, want 1", count)
	}
}

func TestNewSQLiteRequiresPath(t *testing.T) {
	if _, err := NewSQLite(context.Background(), config.StoreConfig{}, zaptest.NewLogger(t)); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestLoadMigrationsSorted(t *testing.T) {
	for _, dir := range []string{postgresMigrationsDir, sqliteMigrationsDir} {
		migrations, err := loadMigrations(dir)
		if err != nil {
			t.Fatalf("%s: %v", dir, err)
		}
		if len(migrations) == 0 {
			t.Fatalf("%s: no migrations embedded", dir)
		}
		for i := 1; i < len(migrations); i++ {
			if migrations[i-1].name >= migrations[i].name {
				t.Errorf("%s: migrations out of order", dir)
			}
		}
	}
}
