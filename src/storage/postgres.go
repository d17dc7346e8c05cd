package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"trade-dashboard/src/logger"
	"trade-dashboard/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresAuditStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

// NewPostgresAuditStore keeps the tables in a schema named after the
// executable, so several dashboards can share one database.
func NewPostgresAuditStore(cfg *models.MConfig, log *logger.Logger) (*PostgresAuditStore, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresAuditStore{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresAuditStore) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *PostgresAuditStore) table() string {
	return fmt.Sprintf(`"%s"."audit_log"`, d.Schema)
}

func (d *PostgresAuditStore) createTables() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL,
			screen TEXT NOT NULL,
			action TEXT NOT NULL,
			params TEXT,
			outcome TEXT NOT NULL,
			message TEXT,
			duration_ms BIGINT,
			created_at BIGINT NOT NULL
		);
	`, d.table())
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create audit_log: %w", err)
	}

	index := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS audit_log_created_at ON %s (created_at)`, d.table())
	if _, err := d.DB.Exec(index); err != nil {
		return fmt.Errorf("failed to index audit_log: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresAuditStore) SaveAuditEntry(entry models.MAuditEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, d.table(), auditColumns)
	_, err := d.DB.Exec(query, entryArgs(entry)...)
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresAuditStore) RecentEntries(limit int) ([]models.MAuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC, id DESC LIMIT $1`, auditColumns, d.table())
	rows, err := d.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresAuditStore) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	cutoff := retentionCutoff(retentionDays)

	d.Logger.Info("Cleaning up audit entries older than %d days (created_at < %d)...", retentionDays, cutoff)

	if _, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM %s WHERE created_at < $1`, d.table()), cutoff); err != nil {
		d.Logger.Error("Cleanup audit_log error: %v", err)
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresAuditStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
