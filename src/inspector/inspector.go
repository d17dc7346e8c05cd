package inspector

import (
	stdjson "encoding/json"
	"strings"

	"trade-dashboard/src/helpers"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

const Placeholder = "No JSON data available."

// Sorted keys and no HTML escaping give one canonical rendering per value.
var pretty = jsoniter.Config{
	SortMapKeys:            true,
	UseNumber:              true,
	EscapeHTML:             false,
	ValidateJsonRawMessage: true,
}.Froze()

// -----------------------------------------------------------------------------

// View is what the overlay shows for one payload.
type View struct {
	Text   string
	Pretty bool
	Empty  bool
}

// -----------------------------------------------------------------------------

// Present formats a raw payload for display. It never fails: nil or blank
// input yields the placeholder and malformed input is returned verbatim.
func Present(raw *string) string {
	return Inspect(raw).Text
}

// PresentString is Present for a non-optional payload.
func PresentString(raw string) string {
	return Present(&raw)
}

// -----------------------------------------------------------------------------

func Inspect(raw *string) View {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return View{Text: Placeholder, Empty: true}
	}
	formatted, err := Format(*raw)
	if err != nil {
		return View{Text: *raw}
	}
	return View{Text: formatted, Pretty: true}
}

// -----------------------------------------------------------------------------

// Format pretty-prints raw with two-space indentation, or returns a
// KindPayloadParse error.
func Format(raw string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", helpers.NewPayloadParseError(errors.Errorf("panic while formatting: %v", r))
		}
	}()

	// jsoniter tolerates some inputs the grammar rejects; gate on the strict check.
	if !stdjson.Valid([]byte(raw)) {
		return "", helpers.NewPayloadParseError(errors.New("invalid JSON"))
	}

	var value interface{}
	if err := pretty.UnmarshalFromString(raw, &value); err != nil {
		return "", helpers.NewPayloadParseError(errors.WithMessage(err, "decode payload"))
	}
	formatted, err := pretty.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", helpers.NewPayloadParseError(errors.WithMessage(err, "encode payload"))
	}
	return string(formatted), nil
}
