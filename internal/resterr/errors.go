// internal/resterr/errors.go
//
// Error surface shared by the extraction layer, the chains, and the views.
//
// Context
// -------
// Pipeline code classifies every failure into one of two buckets:
//
//   - soft   – ErrNoMatch.  "This step does not apply."  Chains skip the step,
//     dispatchers fall through to the next predicate.
//   - hard   – everything else.  Chains abort and hand the error back unchanged.
//
// The typed errors below are the hard failures the HTTP layer knows how to
// render.  Status() maps any error to a status code; Write() renders the JSON
// body.  Wrapping with fmt.Errorf("…: %w") keeps classification intact.
//
// Notes
// -----
//   - ErrNoMatch that escapes a view is reported as 404.  A view that wants a
//     different answer must replace it before returning.
//   - Oxford commas, two spaces after periods.
package resterr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoMatch is the soft failure.  Test with IsNoMatch or errors.Is.
var ErrNoMatch = errors.New("no match")

// ErrNotFound is returned by views when the query matched no row.
var ErrNotFound = errors.New("not found")

// IsNoMatch reports whether err is, or wraps, ErrNoMatch.
func IsNoMatch(err error) bool { return errors.Is(err, ErrNoMatch) }

// -----------------------------------------------------------------------------
// Typed errors
// -----------------------------------------------------------------------------

// InvalidQueryParameterError is a client input error tied to one query key.
type InvalidQueryParameterError struct {
	Name string
	Err  error // parse failure, optional
}

func (e *InvalidQueryParameterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid query parameter %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("invalid query parameter %q", e.Name)
}

func (e *InvalidQueryParameterError) Unwrap() error { return e.Err }

// InvalidQueryParameter builds an *InvalidQueryParameterError.
func InvalidQueryParameter(name string, err error) error {
	return &InvalidQueryParameterError{Name: name, Err: err}
}

// ImproperlyConfiguredError is a server-side setup defect: schema and column
// mismatches, unsupported column types, and the like.
type ImproperlyConfiguredError struct {
	Detail string
}

func (e *ImproperlyConfiguredError) Error() string {
	return "improperly configured: " + e.Detail
}

// ImproperlyConfigured builds an *ImproperlyConfiguredError from a format.
func ImproperlyConfigured(format string, args ...any) error {
	return &ImproperlyConfiguredError{Detail: fmt.Sprintf(format, args...)}
}

// InvalidBodyError reports an undecodable or invalid request body.  Fields
// carries per-field messages when validation produced them.
type InvalidBodyError struct {
	Reason string
	Fields map[string]string
}

func (e *InvalidBodyError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid body: " + e.Reason
	}
	parts := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		parts = append(parts, k+" "+v)
	}
	return "invalid body: " + e.Reason + " (" + strings.Join(parts, ", ") + ")"
}

// -----------------------------------------------------------------------------
// HTTP mapping
// -----------------------------------------------------------------------------

// Status maps err onto an HTTP status code.  nil maps to 200.
func Status(err error) int {
	var (
		iqp *InvalidQueryParameterError
		ic  *ImproperlyConfiguredError
		ib  *InvalidBodyError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &iqp), errors.As(err, &ib):
		return http.StatusBadRequest
	case errors.As(err, &ic):
		return http.StatusInternalServerError
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoMatch):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type body struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Write renders err as a JSON error body.  Server-side failures never leak
// their message to the client.
func Write(w http.ResponseWriter, err error) {
	code := Status(err)
	b := body{Error: err.Error()}
	if code >= http.StatusInternalServerError {
		b.Error = http.StatusText(code)
	}
	var ib *InvalidBodyError
	if errors.As(err, &ib) {
		b.Fields = ib.Fields
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(b)
}
