package storage

import (
	"database/sql"
	"fmt"
	"time"

	"trade-dashboard/src/interfaces"
	"trade-dashboard/src/logger"
	"trade-dashboard/src/models"
)

const auditColumns = "session_id, screen, action, params, outcome, message, duration_ms, created_at"

// -----------------------------------------------------------------------------

// NewAuditStore opens the audit store selected by storage.db_type. "none"
// returns a nil store and no error.
func NewAuditStore(cfg *models.MConfig, log *logger.Logger) (interfaces.IAuditStore, error) {
	var store interfaces.IAuditStore
	var err error

	switch cfg.Storage.DBType {
	case "sqlite":
		store, err = NewSQLiteAuditStore(cfg, log)
	case "postgres":
		store, err = NewPostgresAuditStore(cfg, log)
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported db_type %q", cfg.Storage.DBType)
	}
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize %s audit store: %w", cfg.Storage.DBType, err)
	}
	return NewAsyncAuditStore(store, log, 1024), nil
}

// -----------------------------------------------------------------------------

// retentionCutoff is the created_at bound below which entries are removed.
func retentionCutoff(days int) int64 {
	if days <= 0 {
		days = 30
	}
	return time.Now().UTC().AddDate(0, 0, -days).UnixMilli()
}

// -----------------------------------------------------------------------------

func scanEntries(rows *sql.Rows) ([]models.MAuditEntry, error) {
	defer rows.Close()

	entries := []models.MAuditEntry{}
	for rows.Next() {
		var e models.MAuditEntry
		var created int64
		if err := rows.Scan(&e.SessionID, &e.Screen, &e.Action, &e.Params, &e.Outcome, &e.Message, &e.DurationMs, &created); err != nil {
			return nil, err
		}
		e.CreatedAt = time.UnixMilli(created).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func entryArgs(e models.MAuditEntry) []interface{} {
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return []interface{}{e.SessionID, e.Screen, e.Action, e.Params, e.Outcome, e.Message, e.DurationMs, created.UTC().UnixMilli()}
}
