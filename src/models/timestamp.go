package models

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Layouts the backend has been seen to emit for LocalDateTime / LocalDate values.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

const DateLayout = "2006-01-02"

// -----------------------------------------------------------------------------
// Timestamp
// -----------------------------------------------------------------------------

// Timestamp is a backend date-time that never fails to decode. Values the
// dashboard cannot interpret keep their raw text and report Valid == false.
type Timestamp struct {
	Time  time.Time
	Raw   string
	Valid bool
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t, Raw: t.Format("2006-01-02T15:04:05"), Valid: true}
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	t.Raw = string(trimmed)

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil
		}
		t.Raw = s
		if parsed, ok := parseTimestamp(s); ok {
			t.Time, t.Valid = parsed, true
		}
	case '[':
		if parsed, ok := parseTimeArray(trimmed); ok {
			t.Time, t.Valid = parsed, true
		}
	default:
		// epoch milliseconds
		if ms, err := strconv.ParseInt(string(trimmed), 10, 64); err == nil {
			t.Time, t.Valid = time.UnixMilli(ms).UTC(), true
		}
	}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Valid {
		return json.Marshal(t.Time.Format("2006-01-02T15:04:05"))
	}
	if t.Raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(t.Raw)
}

func (t Timestamp) String() string {
	if t.Valid {
		return t.Time.Format("2006-01-02T15:04:05")
	}
	return t.Raw
}

// -----------------------------------------------------------------------------
// Date
// -----------------------------------------------------------------------------

// Date is a calendar day serialized as "YYYY-MM-DD". Decoding also accepts
// the [YYYY, M, D] array form.
type Date struct {
	Time  time.Time
	Raw   string
	Valid bool
}

func NewDate(t time.Time) Date {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Date{Time: day, Raw: day.Format(DateLayout), Valid: true}
}

// ParseDate parses the form input value; an empty value yields an invalid Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{Raw: s}, err
	}
	return NewDate(t), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var ts Timestamp
	_ = ts.UnmarshalJSON(data)
	*d = Date{Raw: ts.Raw}
	if ts.Valid {
		*d = NewDate(ts.Time)
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format(DateLayout))
}

func (d Date) String() string {
	if d.Valid {
		return d.Time.Format(DateLayout)
	}
	return d.Raw
}

// -----------------------------------------------------------------------------

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseTimeArray(data []byte) (time.Time, bool) {
	var parts []int
	if err := json.Unmarshal(data, &parts); err != nil || len(parts) < 3 {
		return time.Time{}, false
	}
	for len(parts) < 7 {
		parts = append(parts, 0)
	}
	if parts[1] < 1 || parts[1] > 12 || parts[2] < 1 || parts[2] > 31 {
		return time.Time{}, false
	}
	return time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], parts[6], time.UTC), true
}
