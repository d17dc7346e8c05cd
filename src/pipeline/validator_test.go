package pipeline

import (
	"testing"
	"time"

	"trade-dashboard/src/helpers"
	"trade-dashboard/src/models"

	"github.com/stretchr/testify/assert"
)

var (
	inquiryRules = Rules{AllowReference: true}
	rangeRules   = Rules{MaxRangeDays: 31}
)

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name     string
		criteria models.MFilterCriteria
		rules    Rules
		want     string
	}{
		{"reference only", models.MFilterCriteria{ReferenceID: "CR123"}, inquiryRules, ""},
		{"range only", models.MFilterCriteria{StartDate: day("2024-01-01"), EndDate: day("2024-01-02")}, inquiryRules, ""},
		{"reference and range", models.MFilterCriteria{ReferenceID: "CR1", StartDate: day("2024-01-01"), EndDate: day("2024-01-02")}, inquiryRules, ""},
		{"reference with lone start", models.MFilterCriteria{ReferenceID: "CR1", StartDate: day("2024-01-01")}, inquiryRules, ""},
		{"nothing", models.MFilterCriteria{}, inquiryRules, MsgReferenceOrRange},
		{"blank reference", models.MFilterCriteria{ReferenceID: "   "}, inquiryRules, MsgReferenceOrRange},
		{"lone end", models.MFilterCriteria{EndDate: day("2024-01-02")}, inquiryRules, MsgReferenceOrRange},
		{"reversed range", models.MFilterCriteria{StartDate: day("2024-01-02"), EndDate: day("2024-01-01")}, inquiryRules, MsgStartBeforeEnd},
		{"equal dates", models.MFilterCriteria{StartDate: day("2024-01-01"), EndDate: day("2024-01-01")}, inquiryRules, MsgStartBeforeEnd},
		{"reversed range with reference", models.MFilterCriteria{ReferenceID: "CR1", StartDate: day("2024-01-02"), EndDate: day("2024-01-01")}, inquiryRules, MsgStartBeforeEnd},
		{"range rules need both dates", models.MFilterCriteria{StartDate: day("2024-01-01")}, rangeRules, MsgBothDates},
		{"range rules ignore reference", models.MFilterCriteria{ReferenceID: "CR1"}, rangeRules, MsgBothDates},
		{"31 days allowed", models.MFilterCriteria{StartDate: day("2024-01-01"), EndDate: day("2024-02-01")}, rangeRules, ""},
		{"32 days rejected", models.MFilterCriteria{StartDate: day("2024-01-01"), EndDate: day("2024-02-02")}, rangeRules, "The date range cannot exceed 31 days."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.criteria, tc.rules)
			if tc.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, helpers.IsKind(err, helpers.KindValidation))
			assert.Equal(t, tc.want, helpers.AsDashboardError(err).UserMessage())
		})
	}
}

func TestValidate_IncompleteCriteriaAlwaysInvalid(t *testing.T) {
	starts := []*time.Time{nil, day("2024-03-01")}
	ends := []*time.Time{nil, day("2024-03-05")}

	for _, rules := range []Rules{inquiryRules, rangeRules, {}} {
		for _, s := range starts {
			for _, e := range ends {
				c := models.MFilterCriteria{StartDate: s, EndDate: e}
				if c.HasDateRange() {
					continue
				}
				assert.Error(t, Validate(c, rules), "start=%v end=%v rules=%+v", s, e, rules)
			}
		}
	}
}

func TestValidate_NonIncreasingRangeAlwaysInvalid(t *testing.T) {
	base := *day("2024-06-15")
	for offset := 0; offset <= 40; offset += 5 {
		start := base
		end := base.Add(-time.Duration(offset) * time.Hour)
		for _, ref := range []string{"", "CR9"} {
			err := Validate(models.MFilterCriteria{ReferenceID: ref, StartDate: &start, EndDate: &end}, inquiryRules)
			assert.Equal(t, MsgStartBeforeEnd, helpers.AsDashboardError(err).UserMessage())
		}
	}
}

func TestValidateFundCreate(t *testing.T) {
	existing := []models.MFundRecord{{FundID: "F1"}, {FundID: "F2"}}

	assert.NoError(t, ValidateFundCreate(models.MFundRecord{FundID: "F3"}, existing))
	assert.NoError(t, ValidateFundCreate(models.MFundRecord{FundID: "F1"}, nil))

	err := ValidateFundCreate(models.MFundRecord{FundID: " "}, existing)
	assert.Equal(t, MsgFundIDRequired, helpers.AsDashboardError(err).UserMessage())

	err = ValidateFundCreate(models.MFundRecord{FundID: "F2"}, existing)
	assert.True(t, helpers.IsKind(err, helpers.KindValidation))
	assert.Equal(t, "A fund with ID F2 already exists.", helpers.AsDashboardError(err).UserMessage())

	assert.Error(t, ValidateFundUpdate(models.MFundRecord{}))
	assert.NoError(t, ValidateFundUpdate(models.MFundRecord{FundID: "F1"}))
}
