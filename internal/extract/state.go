// internal/extract/state.go
//
// Shared, read-only host State handed to every extraction call next to the
// per-request Context.

package extract

import (
	"github.com/jmoiron/sqlx"
	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"
)

// State carries process-wide handles.  It is a small value; copying it is
// cheap and the pipeline never mutates it.  Extra host values are attached
// with WithValue, which returns a new State.
type State struct {
	DB     *sqlx.DB       // shared pool, may be nil in pure pipeline tests
	Logger *zap.Logger    // nil means zap.L()
	Geo    *geoip2.Reader // optional GeoLite2 reader

	values *valueNode
}

type valueNode struct {
	key, val any
	parent   *valueNode
}

// WithValue returns a copy of s carrying key → val.  Later bindings shadow
// earlier ones.
func (s State) WithValue(key, val any) State {
	s.values = &valueNode{key: key, val: val, parent: s.values}
	return s
}

// Value returns the value bound to key, or nil.
func (s State) Value(key any) any {
	for n := s.values; n != nil; n = n.parent {
		if n.key == key {
			return n.val
		}
	}
	return nil
}

// Log returns the configured logger or the global one.
func (s State) Log() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}
