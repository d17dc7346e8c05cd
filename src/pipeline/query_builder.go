package pipeline

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"trade-dashboard/src/models"
)

// Date layouts the backend expects, per endpoint.
const (
	LayoutISOMillisUTC = "2006-01-02T15:04:05.000Z"
	LayoutMinute       = "2006-01-02T15:04"
	LayoutDate         = models.DateLayout
)

// -----------------------------------------------------------------------------

// EndpointSpec is the request shape of one inquiry endpoint.
type EndpointSpec struct {
	Resource string
	// ReferenceParam names the reference query parameter; empty when the
	// endpoint has no reference lookup.
	ReferenceParam string
	// PathByReference routes a reference-only lookup to Resource/{id}.
	PathByReference bool
	DateLayout      string
	// UTC converts dates to UTC before formatting.
	UTC bool
}

// -----------------------------------------------------------------------------

// Build turns criteria into a request. It is pure: equal criteria give equal
// requests. Absent fields produce no parameter at all.
func (e EndpointSpec) Build(c models.MFilterCriteria) models.MRequest {
	ref := ""
	if e.ReferenceParam != "" {
		ref = strings.TrimSpace(c.ReferenceID)
	}
	hasRange := c.HasDateRange()

	if ref != "" && !hasRange && e.PathByReference {
		return models.MRequest{
			Method: http.MethodGet,
			Path:   e.Resource + "/" + url.PathEscape(ref),
		}
	}

	params := url.Values{}
	if ref != "" {
		params.Set(e.ReferenceParam, ref)
	}
	if hasRange {
		params.Set("startDate", e.formatDate(*c.StartDate))
		params.Set("endDate", e.formatDate(*c.EndDate))
	}
	if len(params) == 0 {
		params = nil
	}

	return models.MRequest{
		Method: http.MethodGet,
		Path:   e.Resource,
		Params: params,
	}
}

// -----------------------------------------------------------------------------

func (e EndpointSpec) formatDate(t time.Time) string {
	if e.UTC {
		t = t.UTC()
	}
	layout := e.DateLayout
	if layout == "" {
		layout = time.RFC3339
	}
	return t.Format(layout)
}
