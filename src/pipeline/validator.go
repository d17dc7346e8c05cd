package pipeline

import (
	"fmt"
	"strings"
	"time"

	"trade-dashboard/src/helpers"
	"trade-dashboard/src/models"
)

const (
	MsgReferenceOrRange = "Please enter a Client Reference Number or select a date range."
	MsgStartBeforeEnd   = "Start date must be before end date."
	MsgBothDates        = "Please select both a start and end date."
	MsgRangeTooLong     = "The date range cannot exceed %d days."
	MsgFundIDRequired   = "Fund ID is required."
	MsgFundIDExists     = "A fund with ID %s already exists."
)

// -----------------------------------------------------------------------------

// Rules describe which criteria combinations a screen accepts.
type Rules struct {
	// AllowReference lets a non-empty reference id stand in for the range.
	AllowReference bool
	// MaxRangeDays bounds end - start; zero disables the check.
	MaxRangeDays int
}

// -----------------------------------------------------------------------------

// Validate checks criteria against rules. It has no side effects; a non-nil
// result is always a KindValidation error.
func Validate(c models.MFilterCriteria, rules Rules) error {
	hasRef := rules.AllowReference && strings.TrimSpace(c.ReferenceID) != ""

	if !c.HasDateRange() {
		if hasRef {
			return nil
		}
		if rules.AllowReference {
			return helpers.NewValidationError(MsgReferenceOrRange)
		}
		return helpers.NewValidationError(MsgBothDates)
	}

	if !c.StartDate.Before(*c.EndDate) {
		return helpers.NewValidationError(MsgStartBeforeEnd)
	}
	if rules.MaxRangeDays > 0 && c.EndDate.Sub(*c.StartDate) > time.Duration(rules.MaxRangeDays)*24*time.Hour {
		return helpers.NewValidationError(fmt.Sprintf(MsgRangeTooLong, rules.MaxRangeDays))
	}
	return nil
}

// -----------------------------------------------------------------------------

// ValidateFundCreate is the advisory client-side check before a create; the
// backend stays authoritative on uniqueness.
func ValidateFundCreate(f models.MFundRecord, existing []models.MFundRecord) error {
	id := strings.TrimSpace(f.FundID)
	if id == "" {
		return helpers.NewValidationError(MsgFundIDRequired)
	}
	for _, e := range existing {
		if e.FundID == id {
			return helpers.NewValidationError(fmt.Sprintf(MsgFundIDExists, id))
		}
	}
	return nil
}

// ValidateFundUpdate only checks the shape; the key comes from the URL.
func ValidateFundUpdate(f models.MFundRecord) error {
	if strings.TrimSpace(f.FundID) == "" {
		return helpers.NewValidationError(MsgFundIDRequired)
	}
	return nil
}
