package models

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Trade
// -----------------------------------------------------------------------------

// MTradeRecord is one derived trade. The (clientReferenceNumber, fundNumber,
// securityId) tuple is not guaranteed unique, so grids key trades by row index.
type MTradeRecord struct {
	ClientReferenceNumber string              `json:"clientReferenceNumber"`
	FundNumber            string              `json:"fundNumber"`
	SecurityID            string              `json:"securityId"`
	TradeDate             Date                `json:"tradeDate"`
	SettleDate            Date                `json:"settleDate"`
	Quantity              decimal.NullDecimal `json:"quantity"`
	Price                 decimal.NullDecimal `json:"price"`
	Principal             decimal.NullDecimal `json:"principal"`
	NetAmount             decimal.NullDecimal `json:"netAmount"`
	BaseCurrency          string              `json:"baseCurrency"`
	OutboundJSON          *string             `json:"outboundJson"`
}

func (r MTradeRecord) Field(key string) interface{} {
	switch key {
	case "clientReferenceNumber":
		return r.ClientReferenceNumber
	case "fundNumber":
		return r.FundNumber
	case "securityId":
		return r.SecurityID
	case "tradeDate":
		return r.TradeDate
	case "settleDate":
		return r.SettleDate
	case "quantity":
		return r.Quantity
	case "price":
		return r.Price
	case "principal":
		return r.Principal
	case "netAmount":
		return r.NetAmount
	case "baseCurrency":
		return r.BaseCurrency
	}
	return nil
}

func (r MTradeRecord) NaturalKey() (string, bool) { return "", false }

func (r MTradeRecord) Payload() *string { return r.OutboundJSON }

// -----------------------------------------------------------------------------
// Exception
// -----------------------------------------------------------------------------

type MExceptionRecord struct {
	ID                    int64     `json:"id"`
	ClientReferenceNumber string    `json:"clientReferenceNumber"`
	FailureReason         string    `json:"failureReason"`
	ErrorType             string    `json:"errorType"`
	CreatedAt             Timestamp `json:"createdAt"`
	FailedTradeJSON       *string   `json:"failedTradeJson"`
}

func (r MExceptionRecord) Field(key string) interface{} {
	switch key {
	case "id":
		return r.ID
	case "clientReferenceNumber":
		return r.ClientReferenceNumber
	case "failureReason":
		return r.FailureReason
	case "errorType":
		return r.ErrorType
	case "createdAt":
		return r.CreatedAt
	}
	return nil
}

func (r MExceptionRecord) NaturalKey() (string, bool) {
	return strconv.FormatInt(r.ID, 10), true
}

func (r MExceptionRecord) Payload() *string { return r.FailedTradeJSON }

// -----------------------------------------------------------------------------
// Raw inbound message
// -----------------------------------------------------------------------------

type MRawMessageRecord struct {
	ID         int64     `json:"id"`
	MessageKey string    `json:"messageKey"`
	CreatedAt  Timestamp `json:"createdAt"`
	JSONData   *string   `json:"jsonData"`
}

func (r MRawMessageRecord) Field(key string) interface{} {
	switch key {
	case "id":
		return r.ID
	case "messageKey":
		return r.MessageKey
	case "createdAt":
		return r.CreatedAt
	}
	return nil
}

func (r MRawMessageRecord) NaturalKey() (string, bool) {
	return strconv.FormatInt(r.ID, 10), true
}

func (r MRawMessageRecord) Payload() *string { return r.JSONData }

// -----------------------------------------------------------------------------
// Summary
// -----------------------------------------------------------------------------

// MSummaryRow holds per-fund counters for one reporting period.
type MSummaryRow struct {
	FundNumber     string `json:"fundNumber"`
	TradesReceived int64  `json:"tradesReceived"`
	TradesCreated  int64  `json:"tradesCreated"`
	Exceptions     int64  `json:"exceptions"`
}

func (r MSummaryRow) Field(key string) interface{} {
	switch key {
	case "fundNumber":
		return r.FundNumber
	case "tradesReceived":
		return r.TradesReceived
	case "tradesCreated":
		return r.TradesCreated
	case "exceptions":
		return r.Exceptions
	}
	return nil
}

func (r MSummaryRow) NaturalKey() (string, bool) { return r.FundNumber, r.FundNumber != "" }
