package pipeline

import (
	"testing"
	"time"

	"trade-dashboard/src/models"

	"github.com/stretchr/testify/assert"
)

var (
	tradesEndpoint     = EndpointSpec{Resource: "/api/trades", ReferenceParam: "clientReferenceNumber", PathByReference: true, DateLayout: LayoutDate}
	exceptionsEndpoint = EndpointSpec{Resource: "/api/exceptions", ReferenceParam: "clientReferenceNumber", PathByReference: true, DateLayout: LayoutMinute}
	messagesEndpoint   = EndpointSpec{Resource: "/api/data", DateLayout: LayoutISOMillisUTC, UTC: true}
)

func TestEndpointSpec_Build(t *testing.T) {
	t.Run("reference only routes to the path", func(t *testing.T) {
		req := tradesEndpoint.Build(models.MFilterCriteria{ReferenceID: "CR123"})
		assert.Equal(t, "GET", req.Method)
		assert.Equal(t, "/api/trades/CR123", req.URL())
		assert.Nil(t, req.Params)
	})

	t.Run("reference is path escaped", func(t *testing.T) {
		req := exceptionsEndpoint.Build(models.MFilterCriteria{ReferenceID: " CR/1 2 "})
		assert.Equal(t, "/api/exceptions/CR%2F1%202", req.Path)
	})

	t.Run("range uses query parameters", func(t *testing.T) {
		req := tradesEndpoint.Build(models.MFilterCriteria{StartDate: day("2024-01-01"), EndDate: day("2024-01-31")})
		assert.Equal(t, "/api/trades?endDate=2024-01-31&startDate=2024-01-01", req.URL())
	})

	t.Run("reference and range combine", func(t *testing.T) {
		req := tradesEndpoint.Build(models.MFilterCriteria{ReferenceID: "CR1", StartDate: day("2024-01-01"), EndDate: day("2024-01-02")})
		assert.Equal(t, "/api/trades", req.Path)
		assert.Equal(t, "CR1", req.Params.Get("clientReferenceNumber"))
		assert.Equal(t, "2024-01-01", req.Params.Get("startDate"))
	})

	t.Run("exceptions are minute precise without zone", func(t *testing.T) {
		start := time.Date(2024, 1, 1, 9, 30, 45, 0, time.FixedZone("EST", -5*3600))
		end := start.Add(2 * time.Hour)
		req := exceptionsEndpoint.Build(models.MFilterCriteria{StartDate: &start, EndDate: &end})
		assert.Equal(t, "2024-01-01T09:30", req.Params.Get("startDate"))
		assert.Equal(t, "2024-01-01T11:30", req.Params.Get("endDate"))
	})

	t.Run("raw messages are UTC with milliseconds", func(t *testing.T) {
		start := time.Date(2024, 1, 1, 9, 30, 0, 0, time.FixedZone("EST", -5*3600))
		end := start.Add(24 * time.Hour)
		req := messagesEndpoint.Build(models.MFilterCriteria{ReferenceID: "ignored", StartDate: &start, EndDate: &end})
		assert.Equal(t, "/api/data", req.Path)
		assert.Equal(t, "2024-01-01T14:30:00.000Z", req.Params.Get("startDate"))
		assert.Equal(t, "2024-01-02T14:30:00.000Z", req.Params.Get("endDate"))
		assert.NotContains(t, req.Params, "clientReferenceNumber")
	})

	t.Run("lone date is not sent", func(t *testing.T) {
		req := tradesEndpoint.Build(models.MFilterCriteria{ReferenceID: "CR1", StartDate: day("2024-01-01")})
		assert.Equal(t, "/api/trades/CR1", req.URL())
	})
}

func TestEndpointSpec_BuildIsPure(t *testing.T) {
	c := models.MFilterCriteria{ReferenceID: "CR1", StartDate: day("2024-01-01"), EndDate: day("2024-01-02")}
	assert.Equal(t, tradesEndpoint.Build(c), tradesEndpoint.Build(c))
	assert.Equal(t, tradesEndpoint.Build(c).URL(), tradesEndpoint.Build(c).URL())
}

func TestEndpointSpec_ParamsSubsetOfInputs(t *testing.T) {
	refs := []string{"", "CR1"}
	starts := []*time.Time{nil, day("2024-01-01")}
	ends := []*time.Time{nil, day("2024-01-09")}

	for _, ep := range []EndpointSpec{tradesEndpoint, exceptionsEndpoint, messagesEndpoint} {
		for _, ref := range refs {
			for _, s := range starts {
				for _, e := range ends {
					c := models.MFilterCriteria{ReferenceID: ref, StartDate: s, EndDate: e}
					req := ep.Build(c)
					for key, values := range req.Params {
						switch key {
						case "clientReferenceNumber":
							assert.NotEmpty(t, ref)
						case "startDate":
							assert.NotNil(t, s)
						case "endDate":
							assert.NotNil(t, e)
						default:
							t.Errorf("unexpected parameter %q", key)
						}
						for _, v := range values {
							assert.NotEmpty(t, v, "parameter %q sent empty", key)
						}
					}
				}
			}
		}
	}
}
