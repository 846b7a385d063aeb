// internal/callback/callback.go
//
// The callback chain: pre-persistence transformations of a model.
//
// Context
// -------
// Control flow is the filter chain's (see internal/chain); the payload is a
// model pointer instead of a query builder.  CreateView decodes the body
// into a fresh *M and runs the resource's callbacks over it before
// validation and INSERT.  A derived view that wants different defaults
// clones the parent's chain, Clear()s it, and adds its own.
//
// Built-ins address struct fields by their `db` column name, the same
// mapping sqlx uses when scanning rows, so callbacks and queries agree on
// names without extra configuration.
package callback

import (
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/reflectx"

	"github.com/yanizio/adept-rest/internal/chain"
	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/resterr"
)

// Name labels callback chains in metrics and logs.
const Name = "callback"

var mapper = reflectx.NewMapperFunc("db", strings.ToLower)

// New builds a callback chain over model type M (normally a pointer).
// Each callback receives a shallow copy of the model, so one that fails or
// is skipped never leaves a half-written model behind.
func New[M any](callbacks ...chain.Item[M]) *chain.Chain[M] {
	return chain.New(Name, callbacks...).WithCopy(shallowCopy[M])
}

// shallowCopy duplicates the struct behind a non-nil pointer.  Other
// values are returned as-is.
func shallowCopy[M any](m M) M {
	rv := reflect.ValueOf(m)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return m
	}
	cp := reflect.New(rv.Elem().Type())
	cp.Elem().Set(rv.Elem())
	return cp.Interface().(M)
}

// Func adapts a one-argument callback.
func Func[M, A any](e extract.Extractor[A], fn func(m M, a A) (M, error)) chain.Item[M] {
	return chain.Step1(e, fn)
}

// Assign sets the field mapped to column from an extracted value.  Absence
// skips the callback.
func Assign[M, V any](column string, e extract.Extractor[V]) chain.Item[M] {
	return chain.Step1(e, func(m M, v V) (M, error) {
		return m, Set(m, column, v)
	})
}

// Touch stamps the current UTC time into every named column.
func Touch[M any](columns ...string) chain.Item[M] {
	return chain.Step0(func(m M) (M, error) {
		now := time.Now().UTC()
		for _, c := range columns {
			if err := Set(m, c, now); err != nil {
				return m, err
			}
		}
		return m, nil
	})
}

// NewUUID fills column with a random UUID when it is still zero.  The field
// may be a string or a uuid.UUID.
func NewUUID[M any](column string) chain.Item[M] {
	return chain.Step0(func(m M) (M, error) {
		f, err := field(m, column)
		if err != nil {
			return m, err
		}
		if !f.IsZero() {
			return m, nil
		}
		id := uuid.New()
		switch f.Type() {
		case reflect.TypeOf(id):
			f.Set(reflect.ValueOf(id))
		case reflect.TypeOf(""):
			f.SetString(id.String())
		default:
			return m, resterr.ImproperlyConfigured("column %q is %s, cannot hold a UUID", column, f.Type())
		}
		return m, nil
	})
}

// Default sets column to v when it is still zero.
func Default[M, V any](column string, v V) chain.Item[M] {
	return chain.Step0(func(m M) (M, error) {
		f, err := field(m, column)
		if err != nil {
			return m, err
		}
		if !f.IsZero() {
			return m, nil
		}
		return m, Set(m, column, v)
	})
}

// Set writes v into the field of model m mapped to column.  m must be a
// non-nil struct pointer.  v must be assignable to the field, or to its
// element type when the field is a pointer.  A nil v zeroes the field.
func Set(m any, column string, v any) error {
	f, err := field(m, column)
	if err != nil {
		return err
	}
	val := reflect.ValueOf(v)
	switch {
	case !val.IsValid():
		f.Set(reflect.Zero(f.Type()))
	case val.Type().AssignableTo(f.Type()):
		f.Set(val)
	case f.Kind() == reflect.Pointer && val.Type().AssignableTo(f.Type().Elem()):
		p := reflect.New(f.Type().Elem())
		p.Elem().Set(val)
		f.Set(p)
	default:
		return resterr.ImproperlyConfigured("cannot assign %s to column %q of type %s", val.Type(), column, f.Type())
	}
	return nil
}

func field(m any, column string) (reflect.Value, error) {
	rv := reflect.ValueOf(m)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, resterr.ImproperlyConfigured("callback target must be a non-nil struct pointer, got %T", m)
	}
	fi, ok := mapper.TypeMap(rv.Type().Elem()).Names[column]
	if !ok {
		return reflect.Value{}, resterr.ImproperlyConfigured("%T has no column %q", m, column)
	}
	return reflectx.FieldByIndexes(rv.Elem(), fi.Index), nil
}
