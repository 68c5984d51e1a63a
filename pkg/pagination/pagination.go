package pagination

import (
	"net/http"
	"strconv"
)

// MaxLimit caps any client supplied page size.
const MaxLimit = 100

// Params holds limit/offset pagination extracted from query strings.
type Params struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// DefaultParams returns the defaults for a listing with the given page size.
func DefaultParams(defaultLimit int) Params {
	if defaultLimit <= 0 || defaultLimit > MaxLimit {
		defaultLimit = 20
	}
	return Params{Limit: defaultLimit, Offset: 0}
}

// ParamError reports a limit or offset that is not an integer.
type ParamError struct {
	Name  string
	Value string
}

func (e *ParamError) Error() string {
	return "invalid value for " + e.Name + ": " + e.Value
}

// FromRequest extracts limit and offset from an HTTP request. A limit above
// MaxLimit is capped; missing or out of range values fall back to the
// defaults. A value that is not an integer returns a *ParamError.
func FromRequest(r *http.Request, defaultLimit int) (Params, error) {
	p := DefaultParams(defaultLimit)

	if limit := r.URL.Query().Get("limit"); limit != "" {
		v, err := strconv.Atoi(limit)
		if err != nil {
			return p, &ParamError{Name: "limit", Value: limit}
		}
		if v > 0 {
			p.Limit = min(v, MaxLimit)
		}
	}

	if offset := r.URL.Query().Get("offset"); offset != "" {
		v, err := strconv.Atoi(offset)
		if err != nil {
			return p, &ParamError{Name: "offset", Value: offset}
		}
		if v >= 0 {
			p.Offset = v
		}
	}

	return p, nil
}
