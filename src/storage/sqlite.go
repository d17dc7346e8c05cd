package storage

import (
	"database/sql"
	"fmt"

	"trade-dashboard/src/logger"
	"trade-dashboard/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteAuditStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteAuditStore(cfg *models.MConfig, log *logger.Logger) (*SQLiteAuditStore, error) {
	return &SQLiteAuditStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteAuditStore) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteAuditStore) createTables() error {
	// SQLite types: INTEGER for int64, TEXT for string
	query := `
		CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			screen TEXT NOT NULL,
			action TEXT NOT NULL,
			params TEXT,
			outcome TEXT NOT NULL,
			message TEXT,
			duration_ms INTEGER,
			created_at INTEGER NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create audit_log: %w", err)
	}
	if _, err := d.DB.Exec("CREATE INDEX IF NOT EXISTS audit_log_created_at ON audit_log (created_at)"); err != nil {
		return fmt.Errorf("failed to index audit_log: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteAuditStore) SaveAuditEntry(entry models.MAuditEntry) error {
	query := "INSERT INTO audit_log (" + auditColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := d.DB.Exec(query, entryArgs(entry)...)
	return err
}

// -----------------------------------------------------------------------------

func (d *SQLiteAuditStore) RecentEntries(limit int) ([]models.MAuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.DB.Query("SELECT "+auditColumns+" FROM audit_log ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// -----------------------------------------------------------------------------

func (d *SQLiteAuditStore) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	cutoff := retentionCutoff(retentionDays)

	d.Logger.Info("Cleaning up audit entries older than %d days (created_at < %d)...", retentionDays, cutoff)

	res, err := d.DB.Exec("DELETE FROM audit_log WHERE created_at < ?", cutoff)
	if err != nil {
		d.Logger.Error("Cleanup audit_log error: %v", err)
		return err
	}
	n, _ := res.RowsAffected()
	d.Logger.Info("Cleanup completed, %d entries removed", n)
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteAuditStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
