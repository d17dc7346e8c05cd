package screens

import (
	"time"

	"trade-dashboard/src/grid"
	"trade-dashboard/src/models"
	"trade-dashboard/src/pipeline"
	"trade-dashboard/src/utils"
)

const (
	Trades     = "trades"
	Exceptions = "exceptions"
	Messages   = "messages"
	Summary    = "summary"
	Funds      = "funds"
)

const (
	EmptyFunds      = `No funds found. Use the "Add Fund" button to create one.`
	EmptyExceptions = "No exceptions to display."
)

// -----------------------------------------------------------------------------

// Definition is the fixed shape of one inquiry screen: its filter rules, the
// endpoint it queries and the columns it shows.
type Definition struct {
	Name           string
	Title          string
	Rules          pipeline.Rules
	Endpoint       pipeline.EndpointSpec
	InputLayout    string
	ReferenceLabel string
	Columns        []grid.Column
	EmptyText      string
	Actions        []grid.Action
	// AutoLoad screens query their default criteria on first visit.
	AutoLoad bool
}

// HasReference reports whether the screen offers a reference field.
func (d Definition) HasReference() bool {
	return d.ReferenceLabel != ""
}

// DateInputType is the HTML input type for the date fields.
func (d Definition) DateInputType() string {
	if d.InputLayout == utils.InputDateTimeLayout {
		return "datetime-local"
	}
	return "date"
}

var inspectAction = grid.Action{Name: "inspect", Label: "View JSON"}

// -----------------------------------------------------------------------------

func TradesDefinition() Definition {
	money := grid.Decimal(2)
	return Definition{
		Name:  Trades,
		Title: "Trade Inquiry",
		Rules: pipeline.Rules{AllowReference: true},
		Endpoint: pipeline.EndpointSpec{
			Resource:        "/api/trades",
			ReferenceParam:  "clientReferenceNumber",
			PathByReference: true,
			DateLayout:      pipeline.LayoutDate,
		},
		InputLayout:    utils.InputDateLayout,
		ReferenceLabel: "Client Reference Number",
		Columns: []grid.Column{
			{Key: "clientReferenceNumber", Label: "Client Ref", Width: 160},
			{Key: "fundNumber", Label: "Fund", Width: 100},
			{Key: "securityId", Label: "Security ID", Width: 140},
			{Key: "tradeDate", Label: "Trade Date", Width: 110, Format: grid.Date},
			{Key: "settleDate", Label: "Settle Date", Width: 110, Format: grid.Date},
			{Key: "quantity", Label: "Quantity", Width: 110, Format: grid.Decimal(0)},
			{Key: "price", Label: "Price", Width: 110, Format: grid.Decimal(4)},
			{Key: "principal", Label: "Principal", Width: 130, Format: money},
			{Key: "netAmount", Label: "Net Amount", Width: 130, Format: money},
			{Key: "baseCurrency", Label: "Currency", Width: 80},
		},
		EmptyText: grid.EmptyText,
		Actions:   []grid.Action{inspectAction},
	}
}

// -----------------------------------------------------------------------------

func ExceptionsDefinition(loc *time.Location) Definition {
	return Definition{
		Name:  Exceptions,
		Title: "Trade Exception Inquiry",
		Rules: pipeline.Rules{AllowReference: true},
		Endpoint: pipeline.EndpointSpec{
			Resource:        "/api/exceptions",
			ReferenceParam:  "clientReferenceNumber",
			PathByReference: true,
			DateLayout:      pipeline.LayoutMinute,
		},
		InputLayout:    utils.InputDateTimeLayout,
		ReferenceLabel: "Client Reference Number",
		Columns: []grid.Column{
			{Key: "id", Label: "ID", Width: 80},
			{Key: "clientReferenceNumber", Label: "Client Reference", Width: 160},
			{Key: "errorType", Label: "Error Type", Width: 140},
			{Key: "failureReason", Label: "Failure Reason", Width: 320},
			{Key: "createdAt", Label: "Created At", Width: 180, Format: grid.Timestamp(loc)},
		},
		EmptyText: EmptyExceptions,
		Actions:   []grid.Action{inspectAction},
	}
}

// -----------------------------------------------------------------------------

func MessagesDefinition(loc *time.Location) Definition {
	return Definition{
		Name:  Messages,
		Title: "JSON Data Viewer",
		Rules: pipeline.Rules{MaxRangeDays: utils.MaxRawMessageRangeDays},
		Endpoint: pipeline.EndpointSpec{
			Resource:   "/api/data",
			DateLayout: pipeline.LayoutISOMillisUTC,
			UTC:        true,
		},
		InputLayout: utils.InputDateTimeLayout,
		Columns: []grid.Column{
			{Key: "id", Label: "Record ID", Width: 150},
			{Key: "messageKey", Label: "Message Key", Width: 250},
			{Key: "createdAt", Label: "Created At", Width: 200, Format: grid.Timestamp(loc)},
		},
		EmptyText: grid.EmptyText,
		Actions:   []grid.Action{inspectAction},
	}
}

// -----------------------------------------------------------------------------

func SummaryDefinition() Definition {
	return Definition{
		Name:  Summary,
		Title: "Trade Summary",
		Rules: pipeline.Rules{},
		Endpoint: pipeline.EndpointSpec{
			Resource:   "/api/summary/trades-by-fund",
			DateLayout: pipeline.LayoutDate,
		},
		InputLayout: utils.InputDateLayout,
		Columns: []grid.Column{
			{Key: "fundNumber", Label: "Fund", Width: 120},
			{Key: "tradesReceived", Label: "Trades Received", Width: 140, Format: grid.Integer},
			{Key: "tradesCreated", Label: "Trades Created", Width: 140, Format: grid.Integer},
			{Key: "exceptions", Label: "Exceptions", Width: 120, Format: grid.Integer},
		},
		EmptyText: grid.EmptyText,
		AutoLoad:  true,
	}
}

// -----------------------------------------------------------------------------

// FundColumns are the Fund Master grid columns; the form uses FundFields.
func FundColumns() []grid.Column {
	return []grid.Column{
		{Key: "fundID", Label: "Fund ID", Width: 150},
		{Key: "fundName", Label: "Fund Name", Width: 250},
		{Key: "fundTicker", Label: "Ticker", Width: 120},
		{Key: "isin", Label: "ISIN", Width: 150},
		{Key: "fundType", Label: "Fund Type", Width: 150},
		{Key: "nav", Label: "Latest NAV", Width: 120, Format: grid.Decimal(4)},
		{Key: "navDate", Label: "NAV Date", Width: 110, Format: grid.Date},
		{Key: "status", Label: "Status", Width: 120},
	}
}

// DefaultCriteria is the prefilled filter of an AutoLoad screen.
func DefaultCriteria(cal *utils.TradingCalendar, now time.Time) models.MFilterCriteria {
	start, end := cal.DefaultRange(now, utils.DefaultSummaryTradingDays)
	return models.MFilterCriteria{StartDate: &start, EndDate: &end}
}
