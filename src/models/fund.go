package models

import (
	"github.com/shopspring/decimal"
)

// MFundRecord is one row of the fund reference table. FundID is the primary
// key and is never changed after creation.
type MFundRecord struct {
	FundID             string              `json:"fundID"`
	FundName           string              `json:"fundName"`
	FundTicker         string              `json:"fundTicker"`
	ISIN               string              `json:"isin"`
	FundType           string              `json:"fundType"`
	LegalStructure     string              `json:"legalStructure"`
	Domicile           string              `json:"domicile"`
	InceptionDate      Date                `json:"inceptionDate"`
	FiscalYearEnd      string              `json:"fiscalYearEnd"`
	BaseCurrency       string              `json:"baseCurrency"`
	ManagementFee      decimal.NullDecimal `json:"managementFee"`
	PerformanceFee     decimal.NullDecimal `json:"performanceFee"`
	FundAdministrator  string              `json:"fundAdministrator"`
	Custodian          string              `json:"custodian"`
	PrimeBrokers       string              `json:"primeBrokers"`
	InvestmentStrategy string              `json:"investmentStrategy"`
	ValuationFrequency string              `json:"valuationFrequency"`
	SubscriptionCycle  string              `json:"subscriptionCycle"`
	RedemptionCycle    string              `json:"redemptionCycle"`
	NAV                decimal.NullDecimal `json:"nav"`
	NAVDate            Date                `json:"navDate"`
	Status             string              `json:"status"`
	LastUpdatedBy      string              `json:"lastUpdatedBy,omitempty"`
	LastUpdatedDate    *Timestamp          `json:"lastUpdatedDate,omitempty"`
}

func (r MFundRecord) Field(key string) interface{} {
	switch key {
	case "fundID":
		return r.FundID
	case "fundName":
		return r.FundName
	case "fundTicker":
		return r.FundTicker
	case "isin":
		return r.ISIN
	case "fundType":
		return r.FundType
	case "legalStructure":
		return r.LegalStructure
	case "domicile":
		return r.Domicile
	case "inceptionDate":
		return r.InceptionDate
	case "baseCurrency":
		return r.BaseCurrency
	case "managementFee":
		return r.ManagementFee
	case "performanceFee":
		return r.PerformanceFee
	case "nav":
		return r.NAV
	case "navDate":
		return r.NAVDate
	case "status":
		return r.Status
	}
	return nil
}

func (r MFundRecord) NaturalKey() (string, bool) { return r.FundID, r.FundID != "" }
