// internal/extract/values.go
//
// Built-in extractors: route parameters, query values, headers, and the raw
// Context.  PathValue and QueryValue are the resolved-value providers the
// lookup resolver and the built-in filters read from.

package extract

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/yanizio/adept-rest/internal/resterr"
)

// Source names where a value came from.
type Source string

const (
	SourcePath   Source = "path"
	SourceQuery  Source = "query"
	SourceHeader Source = "header"
)

// MissingError reports an absent value.  It unwraps to resterr.ErrNoMatch so
// optional steps are skipped instead of failing the request.
type MissingError struct {
	Source Source
	Name   string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing %s parameter %q", e.Source, e.Name)
}

func (e *MissingError) Unwrap() error { return resterr.ErrNoMatch }

// PathValue resolves a route parameter by name.
func PathValue(name string) Extractor[string] {
	return Func[string](func(rc *Context, _ State) (string, error) {
		v, ok := rc.Param(name)
		if !ok {
			return "", &MissingError{Source: SourcePath, Name: name}
		}
		return v, nil
	})
}

// TakePath resolves a route parameter and removes it from the Context.
func TakePath(name string) Extractor[string] {
	return Func[string](func(rc *Context, _ State) (string, error) {
		v, ok := rc.TakeParam(name)
		if !ok {
			return "", &MissingError{Source: SourcePath, Name: name}
		}
		return v, nil
	})
}

// QueryValue resolves the first value of a query key.
func QueryValue(name string) Extractor[string] {
	return Func[string](func(rc *Context, _ State) (string, error) {
		v, ok := rc.QueryValue(name)
		if !ok {
			return "", &MissingError{Source: SourceQuery, Name: name}
		}
		return v, nil
	})
}

// Resolve picks PathValue or QueryValue by source.
func Resolve(src Source, name string) Extractor[string] {
	switch src {
	case SourceQuery:
		return QueryValue(name)
	case SourceHeader:
		return Header(name)
	default:
		return PathValue(name)
	}
}

// Header resolves the first value of a request header.
func Header(name string) Extractor[string] {
	return Func[string](func(rc *Context, _ State) (string, error) {
		v, ok := rc.Header(name)
		if !ok {
			return "", &MissingError{Source: SourceHeader, Name: name}
		}
		return v, nil
	})
}

// Method yields the request method.
func Method() Extractor[string] {
	return Func[string](func(rc *Context, _ State) (string, error) { return rc.Method(), nil })
}

// QueryParams yields a copy of every query value.
func QueryParams() Extractor[url.Values] {
	return Func[url.Values](func(rc *Context, _ State) (url.Values, error) { return rc.Query(), nil })
}

// RawContext yields the Context itself, for steps that need more than one
// field of it.  Do not keep the pointer past the call.
func RawContext() Extractor[*Context] {
	return Func[*Context](func(rc *Context, _ State) (*Context, error) { return rc, nil })
}

// Int64Query parses a numeric query value.  Absence is NoMatch; a malformed
// value is the client's fault.
func Int64Query(name string) Extractor[int64] {
	return Map(QueryValue(name), func(s string) (int64, error) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, resterr.InvalidQueryParameter(name, err)
		}
		return n, nil
	})
}
