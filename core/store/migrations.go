package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	"reportdesk/core/utils"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// sqlite schema, applied statement by statement. Postgres goes through goose
// (see migrations/) so production schemas stay versioned.
var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		pseudonym TEXT NOT NULL DEFAULT '',
		campus_dept TEXT NOT NULL DEFAULT '',
		optional_contact TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		contact_info TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS responders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		contact_info TEXT NOT NULL,
		department TEXT NOT NULL DEFAULT '',
		is_available INTEGER NOT NULL DEFAULT 1,
		total_resolved INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category_id INTEGER NOT NULL,
		user_id INTEGER,
		description TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL DEFAULT 'Medium',
		status TEXT NOT NULL DEFAULT 'Pending',
		responder_id INTEGER,
		created_at TIMESTAMP NOT NULL,
		resolved_at TIMESTAMP,
		FOREIGN KEY(category_id) REFERENCES categories(id),
		FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE SET NULL,
		FOREIGN KEY(responder_id) REFERENCES responders(id) ON DELETE SET NULL
	);`,
	`CREATE TABLE IF NOT EXISTS actions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		report_id INTEGER NOT NULL,
		responder_id INTEGER NOT NULL,
		description TEXT NOT NULL,
		action_type TEXT NOT NULL DEFAULT 'Investigation',
		created_at TIMESTAMP NOT NULL,
		FOREIGN KEY(report_id) REFERENCES reports(id) ON DELETE CASCADE,
		FOREIGN KEY(responder_id) REFERENCES responders(id)
	);`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		actor TEXT NOT NULL,
		action TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS stats_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		taken_at TIMESTAMP NOT NULL,
		payload_json TEXT NOT NULL DEFAULT '{}'
	);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_category ON reports(category_id);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_responder ON reports(responder_id);`,
	`CREATE INDEX IF NOT EXISTS idx_actions_report ON actions(report_id);`,
	`CREATE INDEX IF NOT EXISTS idx_actions_responder ON actions(responder_id);`,
}

func ApplyMigrations(ctx context.Context, db *sql.DB, logger *utils.Logger) error {
	isPG, err := isPostgresDB(ctx, db)
	if err != nil {
		return err
	}
	if !isPG {
		return applySQLiteMigrations(ctx, db, logger)
	}
	return applyGooseMigrations(ctx, db, logger)
}

func applySQLiteMigrations(ctx context.Context, db *sql.DB, logger *utils.Logger) error {
	if logger != nil {
		logger.Printf("applying sqlite migrations")
	}
	for i, stmt := range sqliteMigrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite migration #%d failed: %w", i+1, err)
		}
	}
	return nil
}

func applyGooseMigrations(ctx context.Context, db *sql.DB, logger *utils.Logger) error {
	if logger != nil {
		logger.Printf("applying goose migrations")
	}
	goose.SetBaseFS(embeddedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

func isPostgresDB(ctx context.Context, db *sql.DB) (bool, error) {
	var version string
	if err := db.QueryRowContext(ctx, `SELECT sqlite_version()`).Scan(&version); err == nil {
		return false, nil
	}
	if err := db.QueryRowContext(ctx, `SELECT version()`).Scan(&version); err != nil {
		return false, err
	}
	return true, nil
}
