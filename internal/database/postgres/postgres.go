package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"shortly/config"
)

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Successfully connected to PostgreSQL")
	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS links (
			id UUID PRIMARY KEY,
			original_url TEXT NOT NULL,
			short_code VARCHAR(20) NOT NULL,
			owner_id VARCHAR(64) NOT NULL DEFAULT '',
			title VARCHAR(200) NOT NULL DEFAULT '',
			description VARCHAR(500) NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT true,
			expires_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			clicks BIGINT NOT NULL DEFAULT 0
		)`,

		// The unique index is the actual source of truth for code uniqueness;
		// the service's exists-then-insert loop relies on it.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_links_short_code ON links(short_code)`,

		`CREATE TABLE IF NOT EXISTS clicks (
			id UUID PRIMARY KEY,
			link_id UUID NOT NULL REFERENCES links(id) ON DELETE CASCADE,
			occurred_at TIMESTAMPTZ NOT NULL,
			source_ip VARCHAR(64) NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			referrer TEXT NOT NULL DEFAULT '',
			device_class VARCHAR(10) NOT NULL DEFAULT 'other'
		)`,

		`CREATE INDEX IF NOT EXISTS idx_clicks_link_id ON clicks(link_id)`,
		`CREATE INDEX IF NOT EXISTS idx_clicks_occurred_at ON clicks(occurred_at)`,
		`CREATE INDEX IF NOT EXISTS idx_links_expires_at ON links(expires_at)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}
