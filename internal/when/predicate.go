// internal/when/predicate.go
//
// Predicates: request gates evaluated with the extraction machinery.
//
// Context
// -------
// A Predicate answers "does this branch apply?" with an error value:
//
//	nil                 match
//	NoMatch-class error  no match, try the next branch
//	anything else       hard failure, stop dispatch
//
// Extraction failures follow the same rule, so a predicate over a query
// parameter that is absent simply does not match.
package when

import (
	"net/http"
	"slices"
	"strings"

	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/resterr"
)

// Predicate gates one dispatch branch.
type Predicate interface {
	Check(rc *extract.Context, st extract.State) error
}

// Func adapts a function to Predicate.
type Func func(rc *extract.Context, st extract.State) error

func (f Func) Check(rc *extract.Context, st extract.State) error { return f(rc, st) }

func matchIf(ok bool) error {
	if ok {
		return nil
	}
	return resterr.ErrNoMatch
}

// Check wraps a predicate that reads the context directly.
func Check(fn func(rc *extract.Context, st extract.State) error) Predicate { return Func(fn) }

// Check1 extracts one argument and evaluates fn on it.
func Check1[A any](a extract.Extractor[A], fn func(a A) error) Predicate {
	return Func(func(rc *extract.Context, st extract.State) error {
		av, err := a.Extract(rc, st)
		if err != nil {
			return err
		}
		return fn(av)
	})
}

// Check2 extracts two arguments left to right and evaluates fn.
func Check2[A, B any](a extract.Extractor[A], b extract.Extractor[B], fn func(a A, b B) error) Predicate {
	return Func(func(rc *extract.Context, st extract.State) error {
		av, err := a.Extract(rc, st)
		if err != nil {
			return err
		}
		bv, err := b.Extract(rc, st)
		if err != nil {
			return err
		}
		return fn(av, bv)
	})
}

// Check3 extracts three arguments left to right and evaluates fn.
func Check3[A, B, C any](
	a extract.Extractor[A], b extract.Extractor[B], c extract.Extractor[C],
	fn func(a A, b B, c C) error,
) Predicate {
	return Func(func(rc *extract.Context, st extract.State) error {
		av, err := a.Extract(rc, st)
		if err != nil {
			return err
		}
		bv, err := b.Extract(rc, st)
		if err != nil {
			return err
		}
		cv, err := c.Extract(rc, st)
		if err != nil {
			return err
		}
		return fn(av, bv, cv)
	})
}

// CheckN extracts any number of arguments and evaluates fn on them.
func CheckN(fn func(args []any) error, exts ...extract.Erased) Predicate {
	return Func(func(rc *extract.Context, st extract.State) error {
		args, err := extract.All(rc, st, exts...)
		if err != nil {
			return err
		}
		return fn(args)
	})
}

// If1 is Check1 for a plain boolean test; false means no match.
func If1[A any](a extract.Extractor[A], fn func(a A) bool) Predicate {
	return Check1(a, func(av A) error { return matchIf(fn(av)) })
}

// Has matches when a extracts successfully.
func Has[A any](a extract.Extractor[A]) Predicate {
	return Check1(a, func(A) error { return nil })
}

// -----------------------------------------------------------------------------
// Built-ins
// -----------------------------------------------------------------------------

// Always matches.
func Always() Predicate {
	return Func(func(*extract.Context, extract.State) error { return nil })
}

// Never does not match.
func Never() Predicate {
	return Func(func(*extract.Context, extract.State) error { return resterr.ErrNoMatch })
}

// Method matches any of the given HTTP methods.
func Method(methods ...string) Predicate {
	return If1(extract.Method(), func(m string) bool {
		return slices.ContainsFunc(methods, func(want string) bool { return strings.EqualFold(want, m) })
	})
}

// QueryPresent matches when the query key is present, even if empty.
func QueryPresent(name string) Predicate { return Has(extract.QueryValue(name)) }

// HeaderEquals matches when header name equals value (case-insensitive).
func HeaderEquals(name, value string) Predicate {
	return If1(extract.Header(name), func(v string) bool { return strings.EqualFold(v, value) })
}

// Accepts matches when the Accept header mentions mediaType.
func Accepts(mediaType string) Predicate {
	return If1(extract.Header("Accept"), func(v string) bool {
		for _, part := range strings.Split(v, ",") {
			mt, _, _ := strings.Cut(strings.TrimSpace(part), ";")
			if strings.EqualFold(mt, mediaType) {
				return true
			}
		}
		return false
	})
}

// IsBot matches crawler user agents.
func IsBot() Predicate {
	return If1(extract.UserAgent(), func(a extract.Agent) bool { return a.IsBot })
}

// FromCountry matches clients geolocated to one of the ISO codes.  Without a
// GeoIP reader it never matches.
func FromCountry(codes ...string) Predicate {
	return If1(extract.Country(), func(c string) bool {
		return slices.ContainsFunc(codes, func(want string) bool { return strings.EqualFold(want, c) })
	})
}

// -----------------------------------------------------------------------------
// Combinators
// -----------------------------------------------------------------------------

// Not inverts match and no-match.  Hard errors pass through.
func Not(p Predicate) Predicate {
	return Func(func(rc *extract.Context, st extract.State) error {
		err := p.Check(rc, st)
		switch {
		case err == nil:
			return resterr.ErrNoMatch
		case resterr.IsNoMatch(err):
			return nil
		}
		return err
	})
}

// AllOf matches when every predicate matches.  They share the context and
// run in order; the first failure stops.
func AllOf(ps ...Predicate) Predicate {
	return Func(func(rc *extract.Context, st extract.State) error {
		for _, p := range ps {
			if err := p.Check(rc, st); err != nil {
				return err
			}
		}
		return nil
	})
}

// AnyOf matches when one predicate matches.  Each runs on its own snapshot.
func AnyOf(ps ...Predicate) Predicate {
	return Func(func(rc *extract.Context, st extract.State) error {
		for _, p := range ps {
			err := p.Check(rc.Clone(), st)
			if err == nil {
				return nil
			}
			if !resterr.IsNoMatch(err) {
				return err
			}
		}
		return resterr.ErrNoMatch
	})
}

// Common method gates.
var (
	Reads  = Method(http.MethodGet, http.MethodHead)
	Writes = Method(http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete)
)
