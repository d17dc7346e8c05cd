package utils

// -----------------------------------------------------------------------------

// Layouts of the HTML date inputs the screens post.
const (
	InputDateLayout     = "2006-01-02"
	InputDateTimeLayout = "2006-01-02T15:04"
)

const (
	DefaultRetentionDays = 30
	// Raw inbound messages can only be queried over at most this many days.
	MaxRawMessageRangeDays = 31
	// The summary reporting period defaults to the last N trading days.
	DefaultSummaryTradingDays = 5
	DefaultHistorySize        = 20
)
