package models

import "net/url"

// MRequest is the canonical request produced by a query builder: the same
// criteria always yield an equal MRequest.
type MRequest struct {
	Method string
	Path   string
	Params url.Values
	Body   interface{}
}

// URL renders path and encoded parameters (parameters sorted by key).
func (r MRequest) URL() string {
	if len(r.Params) == 0 {
		return r.Path
	}
	return r.Path + "?" + r.Params.Encode()
}
