package interfaces

import (
	"context"

	"trade-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IBackendClient defines the contract for requests to the trade backend.
// -----------------------------------------------------------------------------

type IBackendClient interface {

	// -----------------------------------------------------------------------------

	// Send performs the request and returns the body of a 2xx response.
	// Every other outcome is returned as a *helpers.DashboardError
	// (KindAuth for 401, KindTransport otherwise).
	Send(ctx context.Context, req models.MRequest) ([]byte, error)
}
