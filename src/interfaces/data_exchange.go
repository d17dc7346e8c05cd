package interfaces

import "trade-dashboard/src/models"

// -----------------------------------------------------------------------------
// INotifier pushes workspace state changes to the pages a session has open.
// -----------------------------------------------------------------------------

type INotifier interface {
	// -----------------------------------------------------------------------------
	// Notify delivers event to every connection of sessionID. It never blocks.
	Notify(sessionID string, event models.MStateEvent)
}
