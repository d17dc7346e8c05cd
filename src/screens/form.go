package screens

import (
	"html"
	"net/url"
	"strings"
	"time"

	"trade-dashboard/src/helpers"
	"trade-dashboard/src/models"

	"github.com/microcosm-cc/bluemonday"
)

// Form field names posted by the inquiry screens.
const (
	FieldReference = "referenceId"
	FieldStartDate = "startDate"
	FieldEndDate   = "endDate"
)

var strictPolicy = bluemonday.StrictPolicy()

// FormValues is the filter state as the date inputs expect it.
type FormValues struct {
	ReferenceID string
	StartDate   string
	EndDate     string
}

// -----------------------------------------------------------------------------

// Sanitize strips markup from a free-text input and trims it.
func Sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(strings.TrimSpace(s))))
}

// -----------------------------------------------------------------------------

// ParseCriteria reads the filter form. Dates are interpreted in loc using
// layout; unparseable dates are validation errors.
func ParseCriteria(values url.Values, layout string, loc *time.Location) (models.MFilterCriteria, error) {
	var c models.MFilterCriteria
	c.ReferenceID = Sanitize(values.Get(FieldReference))

	start, err := parseInput(values.Get(FieldStartDate), layout, loc)
	if err != nil {
		return c, helpers.NewValidationError("Start date is not a valid date.")
	}
	end, err := parseInput(values.Get(FieldEndDate), layout, loc)
	if err != nil {
		return c, helpers.NewValidationError("End date is not a valid date.")
	}
	c.StartDate, c.EndDate = start, end
	return c, nil
}

func parseInput(v, layout string, loc *time.Location) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(layout, v, loc)
	if err != nil {
		// datetime-local may carry seconds
		if t2, err2 := time.ParseInLocation(layout+":05", v, loc); err2 == nil {
			return &t2, nil
		}
		return nil, err
	}
	return &t, nil
}

// -----------------------------------------------------------------------------

// ToFormValues renders criteria back into input values.
func ToFormValues(c models.MFilterCriteria, layout string, loc *time.Location) FormValues {
	fv := FormValues{ReferenceID: c.ReferenceID}
	if loc == nil {
		loc = time.UTC
	}
	if c.StartDate != nil {
		fv.StartDate = c.StartDate.In(loc).Format(layout)
	}
	if c.EndDate != nil {
		fv.EndDate = c.EndDate.In(loc).Format(layout)
	}
	return fv
}
