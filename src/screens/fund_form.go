package screens

import (
	"fmt"
	"net/url"
	"strings"

	"trade-dashboard/src/helpers"
	"trade-dashboard/src/models"

	"github.com/shopspring/decimal"
)

// FundField describes one input of the fund form.
type FundField struct {
	Name     string
	Label    string
	Kind     string // text | date | number | textarea
	ReadOnly bool   // set once at creation
}

var FundFields = []FundField{
	{Name: "fundID", Label: "Fund ID", Kind: "text", ReadOnly: true},
	{Name: "fundName", Label: "Fund Name", Kind: "text"},
	{Name: "fundTicker", Label: "Fund Ticker", Kind: "text"},
	{Name: "isin", Label: "ISIN", Kind: "text"},
	{Name: "fundType", Label: "Fund Type", Kind: "text"},
	{Name: "legalStructure", Label: "Legal Structure", Kind: "text"},
	{Name: "domicile", Label: "Domicile", Kind: "text"},
	{Name: "inceptionDate", Label: "Inception Date", Kind: "date"},
	{Name: "fiscalYearEnd", Label: "Fiscal Year End (MM-DD)", Kind: "text"},
	{Name: "baseCurrency", Label: "Base Currency", Kind: "text"},
	{Name: "managementFee", Label: "Management Fee (%)", Kind: "number"},
	{Name: "performanceFee", Label: "Performance Fee (%)", Kind: "number"},
	{Name: "fundAdministrator", Label: "Fund Administrator", Kind: "text"},
	{Name: "custodian", Label: "Custodian", Kind: "text"},
	{Name: "primeBrokers", Label: "Prime Brokers (comma-separated)", Kind: "text"},
	{Name: "investmentStrategy", Label: "Investment Strategy", Kind: "textarea"},
	{Name: "valuationFrequency", Label: "Valuation Frequency", Kind: "text"},
	{Name: "subscriptionCycle", Label: "Subscription Cycle", Kind: "text"},
	{Name: "redemptionCycle", Label: "Redemption Cycle", Kind: "text"},
	{Name: "nav", Label: "Latest NAV", Kind: "number"},
	{Name: "navDate", Label: "NAV Date", Kind: "date"},
	{Name: "status", Label: "Status", Kind: "text"},
}

// -----------------------------------------------------------------------------

// ParseFund reads a posted fund form. Only the shape is checked here.
func ParseFund(values url.Values) (models.MFundRecord, error) {
	get := func(name string) string { return Sanitize(values.Get(name)) }

	f := models.MFundRecord{
		FundID:             get("fundID"),
		FundName:           get("fundName"),
		FundTicker:         get("fundTicker"),
		ISIN:               get("isin"),
		FundType:           get("fundType"),
		LegalStructure:     get("legalStructure"),
		Domicile:           get("domicile"),
		FiscalYearEnd:      get("fiscalYearEnd"),
		BaseCurrency:       strings.ToUpper(get("baseCurrency")),
		FundAdministrator:  get("fundAdministrator"),
		Custodian:          get("custodian"),
		PrimeBrokers:       get("primeBrokers"),
		InvestmentStrategy: get("investmentStrategy"),
		ValuationFrequency: get("valuationFrequency"),
		SubscriptionCycle:  get("subscriptionCycle"),
		RedemptionCycle:    get("redemptionCycle"),
		Status:             get("status"),
	}

	var err error
	if f.ManagementFee, err = parseDecimal(get("managementFee"), "Management Fee"); err != nil {
		return f, err
	}
	if f.PerformanceFee, err = parseDecimal(get("performanceFee"), "Performance Fee"); err != nil {
		return f, err
	}
	if f.NAV, err = parseDecimal(get("nav"), "Latest NAV"); err != nil {
		return f, err
	}
	if f.InceptionDate, err = parseFundDate(get("inceptionDate"), "Inception Date"); err != nil {
		return f, err
	}
	if f.NAVDate, err = parseFundDate(get("navDate"), "NAV Date"); err != nil {
		return f, err
	}
	return f, nil
}

// -----------------------------------------------------------------------------

// FundFormValues renders a fund back into form values keyed by field name.
func FundFormValues(f models.MFundRecord) map[string]string {
	out := make(map[string]string, len(FundFields))
	for _, field := range FundFields {
		v := f.Field(field.Name)
		switch x := v.(type) {
		case nil:
			out[field.Name] = fundFieldString(f, field.Name)
		case string:
			out[field.Name] = x
		case models.Date:
			if x.Valid {
				out[field.Name] = x.String()
			}
		case decimal.NullDecimal:
			if x.Valid {
				out[field.Name] = x.Decimal.String()
			}
		default:
			out[field.Name] = fmt.Sprint(x)
		}
	}
	return out
}

// fundFieldString covers the fields the grid does not expose through Field.
func fundFieldString(f models.MFundRecord, name string) string {
	switch name {
	case "fiscalYearEnd":
		return f.FiscalYearEnd
	case "fundAdministrator":
		return f.FundAdministrator
	case "custodian":
		return f.Custodian
	case "primeBrokers":
		return f.PrimeBrokers
	case "investmentStrategy":
		return f.InvestmentStrategy
	case "valuationFrequency":
		return f.ValuationFrequency
	case "subscriptionCycle":
		return f.SubscriptionCycle
	case "redemptionCycle":
		return f.RedemptionCycle
	}
	return ""
}

// -----------------------------------------------------------------------------

func parseDecimal(s, label string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, helpers.NewValidationError(label + " must be a number.")
	}
	return decimal.NewNullDecimal(d), nil
}

func parseFundDate(s, label string) (models.Date, error) {
	d, err := models.ParseDate(s)
	if err != nil {
		return models.Date{}, helpers.NewValidationError(label + " must be a date (YYYY-MM-DD).")
	}
	return d, nil
}
