package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hanriel/thermal-controller-iot/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens the SQLite database file, creating the parent directory if
// needed, and validates connectivity.
func Open(cfg config.SQLiteConfig) (*sql.DB, error) {
	dsn, err := buildDSN(cfg.Path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	// SQLite is best with low concurrency; a single writer connection avoids
	// SQLITE_BUSY under the sampling loop + HTTP readers.
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns >= 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if d := cfg.ConnMaxLifetimeDuration(); d > 0 {
		db.SetConnMaxLifetime(d)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}

func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

func buildDSN(path string) (string, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	// - busy_timeout: avoids "database is locked" when a query races an insert
	// - journal_mode=WAL: concurrent readers while the sampling loop writes
	params := []string{
		"_busy_timeout=5000",
		"_journal_mode=WAL",
	}

	// Don't double-wrap a DSN the caller already built.
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}

	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}
