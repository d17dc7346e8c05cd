package network

import (
	"bytes"
	"context"

	"trade-dashboard/src/helpers"
	"trade-dashboard/src/interfaces"
	"trade-dashboard/src/models"

	"github.com/pkg/errors"
)

const (
	MalformedMessage = "Malformed response from the trade service."
	FailedMessage    = "Request failed."
)

// -----------------------------------------------------------------------------

// FetchList sends req and decodes the record list from the response.
func FetchList[T any](ctx context.Context, client interfaces.IBackendClient, req models.MRequest) ([]T, error) {
	body, err := client.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return DecodeList[T](body)
}

// -----------------------------------------------------------------------------

// DecodeList accepts a bare JSON array, or the envelope
// {success, data: [...] | {content: [...]}, message}. success:false is a
// failure even on HTTP 200.
func DecodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, malformed(errors.New("empty body"))
	}

	switch trimmed[0] {
	case '[':
		return decodeArray[T](trimmed)
	case '{':
	default:
		return nil, malformed(errors.Errorf("unexpected leading byte %q", trimmed[0]))
	}

	var env models.MEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, malformed(errors.WithMessage(err, "decode envelope"))
	}
	if env.Success == nil {
		return nil, malformed(errors.New("envelope has no success flag"))
	}
	if !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = FailedMessage
		}
		return nil, helpers.NewTransportError(msg, 200, errors.New("backend reported success=false"))
	}

	return decodeData[T](env.Data)
}

// -----------------------------------------------------------------------------

// CheckAck validates the body of a mutation response. Empty bodies and plain
// objects are acknowledgements; only an envelope with success:false fails.
func CheckAck(body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var env models.MEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil
	}
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = FailedMessage
		}
		return helpers.NewTransportError(msg, 200, errors.New("backend reported success=false"))
	}
	return nil
}

// -----------------------------------------------------------------------------

func decodeData[T any](data []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	switch trimmed[0] {
	case '[':
		return decodeArray[T](trimmed)
	case '{':
		var page models.MPage
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, malformed(errors.WithMessage(err, "decode page"))
		}
		content := bytes.TrimSpace(page.Content)
		if len(content) == 0 || bytes.Equal(content, []byte("null")) {
			return []T{}, nil
		}
		if content[0] != '[' {
			return nil, malformed(errors.New("page content is not an array"))
		}
		return decodeArray[T](content)
	}
	return nil, malformed(errors.Errorf("data is neither an array nor a page"))
}

// -----------------------------------------------------------------------------

func decodeArray[T any](data []byte) ([]T, error) {
	records := []T{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, malformed(errors.WithMessage(err, "decode records"))
	}
	return records, nil
}

// -----------------------------------------------------------------------------

func malformed(cause error) error {
	return helpers.NewTransportError(MalformedMessage, 0, cause)
}

// -----------------------------------------------------------------------------

// MarshalRecord encodes a record the way it is sent to the backend.
func MarshalRecord(v interface{}) (string, error) {
	return json.MarshalToString(v)
}
