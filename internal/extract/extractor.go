// internal/extract/extractor.go
//
// The extraction contract.
//
// Context
// -------
// Anything that can produce a value from (*Context, State) is an Extractor.
// Three ways to get one:
//
//  1. Implement Extractor[T] directly, or wrap a function with Func[T].
//  2. Let T build itself: implement Extractable on *T and use Self[T]().
//  3. Use a built-in from values.go or client.go.
//
// Composite consumers (chain steps, predicates) extract a fixed list of
// arguments left to right and stop at the first failure.  Typed adapters in
// internal/chain and internal/when cover one to four arguments; All() covers
// any arity through the Erased form.
//
// Notes
// -----
//   - Extractors return owned values and must not keep the *Context.
//   - Absence is reported as a NoMatch-class error (see MissingError) so
//     chains can treat it as "step does not apply".
package extract

import (
	"fmt"

	"github.com/yanizio/adept-rest/internal/resterr"
)

// Extractor produces a T from the request.
type Extractor[T any] interface {
	Extract(rc *Context, st State) (T, error)
}

// Func adapts an ordinary function to Extractor.
type Func[T any] func(rc *Context, st State) (T, error)

func (f Func[T]) Extract(rc *Context, st State) (T, error) { return f(rc, st) }

// Extractable is implemented by types that can populate themselves from the
// request.  Implement it on the pointer receiver.
type Extractable interface {
	FromRequest(rc *Context, st State) error
}

// Self returns an Extractor that allocates a T and calls its FromRequest.
func Self[T any, PT interface {
	*T
	Extractable
}]() Extractor[T] {
	return Func[T](func(rc *Context, st State) (T, error) {
		var v T
		if err := PT(&v).FromRequest(rc, st); err != nil {
			var zero T
			return zero, err
		}
		return v, nil
	})
}

// Value always yields v.
func Value[T any](v T) Extractor[T] {
	return Func[T](func(*Context, State) (T, error) { return v, nil })
}

// Optional turns a NoMatch failure into a nil pointer.  Hard failures still
// propagate.
func Optional[T any](e Extractor[T]) Extractor[*T] {
	return Func[*T](func(rc *Context, st State) (*T, error) {
		v, err := e.Extract(rc, st)
		if err != nil {
			if resterr.IsNoMatch(err) {
				return nil, nil
			}
			return nil, err
		}
		return &v, nil
	})
}

// Map post-processes an extracted value.
func Map[T, U any](e Extractor[T], fn func(T) (U, error)) Extractor[U] {
	return Func[U](func(rc *Context, st State) (U, error) {
		v, err := e.Extract(rc, st)
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(v)
	})
}

// -----------------------------------------------------------------------------
// Type-erased form
// -----------------------------------------------------------------------------

// Erased is an Extractor whose result type has been forgotten.  Use it when
// a step takes a variable number of arguments.
type Erased interface {
	ExtractAny(rc *Context, st State) (any, error)
}

type erased[T any] struct{ e Extractor[T] }

func (x erased[T]) ExtractAny(rc *Context, st State) (any, error) {
	return x.e.Extract(rc, st)
}

// Erase forgets the result type of e.
func Erase[T any](e Extractor[T]) Erased { return erased[T]{e: e} }

// All runs every extractor in order and stops at the first failure.  The
// failing position is added to the error; classification is preserved.
func All(rc *Context, st State, exts ...Erased) ([]any, error) {
	out := make([]any, 0, len(exts))
	for i, e := range exts {
		v, err := e.ExtractAny(rc, st)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// As asserts one element of an All() result.  A mismatch is a setup defect.
func As[T any](args []any, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(args) {
		return zero, resterr.ImproperlyConfigured("argument %d out of range (have %d)", i, len(args))
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, resterr.ImproperlyConfigured("argument %d is %T, want %T", i, args[i], zero)
	}
	return v, nil
}
