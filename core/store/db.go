package store

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"reportdesk/config"
	"reportdesk/core/utils"
)

// NewDB opens the configured database and applies the pool limits. Requests
// that arrive while the pool is exhausted wait on a free connection instead
// of failing, which is the behavior the API layer relies on.
func NewDB(cfg *config.AppConfig, logger *utils.Logger) (*sql.DB, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	var db *sql.DB
	var err error
	switch driver {
	case "", "postgres", "pgx":
		db, err = sql.Open("pgx", cfg.DBURL)
	case "sqlite":
		path := strings.TrimSpace(cfg.DBPath)
		if path == "" {
			return nil, fmt.Errorf("db_path is required for the sqlite driver")
		}
		db, err = sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	}
	if cfg.Pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	}
	if cfg.Pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.Pool.ConnMaxLifetime)
	}
	if driver == "sqlite" {
		// modernc sqlite serializes writes; a single connection avoids
		// SQLITE_BUSY churn under concurrent handlers.
		db.SetMaxOpenConns(1)
	}
	if logger != nil {
		logger.Printf("database opened (driver=%s)", driverName(driver))
	}
	return db, nil
}

func driverName(driver string) string {
	if driver == "" || driver == "pgx" {
		return "postgres"
	}
	return driver
}
