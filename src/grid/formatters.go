package grid

import (
	"fmt"
	"strconv"
	"time"

	"trade-dashboard/src/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Formatter turns a cell value into display text. An error makes the grid
// show the raw value instead.
type Formatter func(v interface{}) (string, error)

const DisplayTimestampLayout = "2006-01-02 15:04:05"

// -----------------------------------------------------------------------------

// Timestamp renders a models.Timestamp in loc (UTC when nil).
func Timestamp(loc *time.Location) Formatter {
	return func(v interface{}) (string, error) {
		ts, ok := v.(models.Timestamp)
		if !ok {
			return "", errors.Errorf("not a timestamp: %T", v)
		}
		if !ts.Valid {
			return "", errors.Errorf("unparsed timestamp %q", ts.Raw)
		}
		t := ts.Time
		// zoneless backend values decode as UTC
		if loc != nil {
			t = t.In(loc)
		}
		return t.Format(DisplayTimestampLayout), nil
	}
}

// -----------------------------------------------------------------------------

func Date(v interface{}) (string, error) {
	d, ok := v.(models.Date)
	if !ok {
		return "", errors.Errorf("not a date: %T", v)
	}
	if !d.Valid {
		return "", errors.Errorf("unparsed date %q", d.Raw)
	}
	return d.Time.Format(models.DateLayout), nil
}

// -----------------------------------------------------------------------------

// Decimal renders with a fixed number of places and thousands separators.
func Decimal(places int32) Formatter {
	return func(v interface{}) (string, error) {
		d, ok := v.(decimal.NullDecimal)
		if !ok {
			return "", errors.Errorf("not a decimal: %T", v)
		}
		if !d.Valid {
			return "", nil
		}
		return groupThousands(d.Decimal.StringFixed(places)), nil
	}
}

// -----------------------------------------------------------------------------

func Integer(v interface{}) (string, error) {
	switch n := v.(type) {
	case int:
		return groupThousands(strconv.Itoa(n)), nil
	case int64:
		return groupThousands(strconv.FormatInt(n, 10)), nil
	}
	return "", errors.Errorf("not an integer: %T", v)
}

// -----------------------------------------------------------------------------

// Raw is the fallback rendering of any value.
func Raw(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case models.Timestamp:
		return x.Raw
	case models.Date:
		return x.Raw
	case decimal.NullDecimal:
		if !x.Valid {
			return ""
		}
		return x.Decimal.String()
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// -----------------------------------------------------------------------------

func groupThousands(s string) string {
	sign := ""
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		sign, s = s[:1], s[1:]
	}
	intPart, frac := s, ""
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			intPart, frac = s[:i], s[i:]
			break
		}
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}

	out := make([]byte, 0, len(intPart)+len(intPart)/3)
	lead := len(intPart) % 3
	if lead > 0 {
		out = append(out, intPart[:lead]...)
	}
	for i := lead; i < len(intPart); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, intPart[i:i+3]...)
	}
	return sign + string(out) + frac
}
