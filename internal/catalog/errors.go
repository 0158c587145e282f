package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// ErrNotFound is returned when the catalog has no object for a name.
var ErrNotFound = errors.New("object not found in catalog")

// QueryError carries the messages from a SIMBAD "::error::" section.
type QueryError struct {
	Messages []string
}

func (e *QueryError) Error() string {
	if len(e.Messages) == 0 {
		return "simbad: query failed"
	}
	return "simbad: " + strings.Join(e.Messages, "; ")
}

// NotFound reports whether SIMBAD rejected the query because nothing
// matched, as opposed to a syntax or server problem.
func (e *QueryError) NotFound() bool {
	for _, m := range e.Messages {
		lm := strings.ToLower(m)
		if strings.Contains(lm, "not found") || strings.Contains(lm, "no astronomical object found") {
			return true
		}
	}
	return false
}

// StatusError reports a non-2xx HTTP response from the catalog.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return "simbad: unexpected status " + httpStatus(e.StatusCode)
	}
	return "simbad: unexpected status " + httpStatus(e.StatusCode) + ": " + e.Body
}

func httpStatus(code int) string {
	if text := http.StatusText(code); text != "" {
		return strconv.Itoa(code) + " " + text
	}
	return strconv.Itoa(code)
}
