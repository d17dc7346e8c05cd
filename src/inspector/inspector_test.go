package inspector

import (
	stdjson "encoding/json"
	"testing"

	"trade-dashboard/src/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresent_Placeholder(t *testing.T) {
	blank := "  \n"
	assert.Equal(t, Placeholder, Present(nil))
	assert.Equal(t, Placeholder, PresentString(""))
	assert.Equal(t, Placeholder, Present(&blank))
	assert.True(t, Inspect(nil).Empty)
}

func TestPresent_PrettyPrints(t *testing.T) {
	out := PresentString(`{"b":1,"a":{"y":[1,2],"x":"<tag>"}}`)
	want := "{\n" +
		"  \"a\": {\n" +
		"    \"x\": \"<tag>\",\n" +
		"    \"y\": [\n" +
		"      1,\n" +
		"      2\n" +
		"    ]\n" +
		"  },\n" +
		"  \"b\": 1\n" +
		"}"
	assert.Equal(t, want, out)
}

func TestPresent_MalformedIsVerbatim(t *testing.T) {
	inputs := []string{
		"{not json",
		`{"a":1,}`,
		`{"a":1} trailing`,
		`[1,2`,
		"plain text payload",
		"\x00\xff",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, in, PresentString(in))
			})
			view := Inspect(&in)
			assert.False(t, view.Pretty)
			assert.False(t, view.Empty)

			_, err := Format(in)
			assert.True(t, helpers.IsKind(err, helpers.KindPayloadParse))
		})
	}
}

func TestPresent_Idempotent(t *testing.T) {
	for _, in := range []string{`{"z":[true,null],"a":1.50}`, "{broken", "", `"just a string"`} {
		assert.Equal(t, PresentString(in), PresentString(in))
	}
}

func TestPresent_RoundTrip(t *testing.T) {
	inputs := []string{
		`{"tradeId":"T-1","legs":[{"qty":100,"px":10.25},{"qty":-5,"px":0.0001}],"meta":null,"ok":true}`,
		`[1,"two",{"three":3}]`,
		`12345678901234567890`,
		`"nested \"quoted\" json"`,
		`{}`,
	}
	for _, in := range inputs {
		var want, got interface{}
		require.NoError(t, stdjson.Unmarshal([]byte(in), &want))
		out := PresentString(in)
		require.NoError(t, stdjson.Unmarshal([]byte(out), &got), out)
		assert.Equal(t, want, got)
	}
}

func TestPresent_KeepsLargeNumbersExact(t *testing.T) {
	out := PresentString(`{"id":12345678901234567890}`)
	assert.Contains(t, out, "12345678901234567890")
}
