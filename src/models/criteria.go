package models

import "time"

// MFilterCriteria holds the user-entered filter values of one inquiry screen.
type MFilterCriteria struct {
	ReferenceID string     `json:"referenceId,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
}

func (c MFilterCriteria) HasReference() bool {
	return c.ReferenceID != ""
}

// HasDateRange reports whether both ends of the range are present.
func (c MFilterCriteria) HasDateRange() bool {
	return c.StartDate != nil && c.EndDate != nil
}

// HasPartialRange reports whether exactly one end of the range is present.
func (c MFilterCriteria) HasPartialRange() bool {
	return (c.StartDate == nil) != (c.EndDate == nil)
}

func (c MFilterCriteria) IsEmpty() bool {
	return !c.HasReference() && c.StartDate == nil && c.EndDate == nil
}
