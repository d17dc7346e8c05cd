package interfaces

import "trade-dashboard/src/models"

// -----------------------------------------------------------------------------
// IAuditStore defines the contract for the query/action audit log.
// -----------------------------------------------------------------------------

type IAuditStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveAuditEntry appends one entry.
	SaveAuditEntry(entry models.MAuditEntry) error

	// -----------------------------------------------------------------------------

	// RecentEntries returns the newest entries first.
	RecentEntries(limit int) ([]models.MAuditEntry, error)

	// -----------------------------------------------------------------------------

	// CleanupOldData removes entries older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
