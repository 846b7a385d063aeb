// internal/lookup/lookup.go
//
// Lookup resolver: turn a path or query value into a typed equality
// predicate on a key column.
//
// Context
// -------
// Detail and delete endpoints address one row: "/notes/{pk}" becomes
// WHERE id = 42.  A Lookup names the key column (the entity's primary key by
// default) and where the raw value comes from.  Resolution is:
//
//  1. look up the column's declared type in the entity schema
//  2. fetch the raw string with extract.Resolve(source, name)
//  3. coerce it by column type
//  4. AND "column = value" into the query
//
// A Mapping applies several Lookups in order, so nested routes such as
// "/owners/{owner}/notes/{pk}" add one clause per key.  Clauses are only
// ever ANDed.
//
// Notes
// -----
//   - A missing raw value is NoMatch-class (DetailView answers 404).
//   - A value that does not parse for an integer column, or a column type we
//     cannot coerce, is ImproperlyConfigured.
package lookup

import (
	"strconv"

	"github.com/yanizio/adept-rest/internal/chain"
	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/query"
	"github.com/yanizio/adept-rest/internal/resterr"
	"github.com/yanizio/adept-rest/internal/schema"
)

// KeySpec selects the key column.  The zero value means "primary key".
type KeySpec struct {
	Column string
}

// PrimaryKey selects the entity's primary key.
func PrimaryKey() KeySpec { return KeySpec{} }

// Column selects an explicit column.
func Column(name string) KeySpec { return KeySpec{Column: name} }

func (k KeySpec) resolve(e *schema.Entity) (schema.Column, error) {
	name := k.Column
	if name == "" {
		name = e.PrimaryKey
		if name == "" {
			return schema.Column{}, resterr.ImproperlyConfigured("entity %q has no primary key", e.Table)
		}
	}
	col, ok := e.Column(name)
	if !ok {
		return schema.Column{}, resterr.ImproperlyConfigured("entity %q has no column %q", e.Table, name)
	}
	return col, nil
}

// Lookup is one key binding.
type Lookup struct {
	Key    KeySpec
	Source extract.Source
	Name   string // path or query parameter name
}

// Path binds the primary key to path parameter name.
func Path(name string) Lookup {
	return Lookup{Source: extract.SourcePath, Name: name}
}

// Query binds the primary key to query parameter name.
func Query(name string) Lookup {
	return Lookup{Source: extract.SourceQuery, Name: name}
}

// On returns a copy of l bound to column instead of the primary key.
func (l Lookup) On(column string) Lookup {
	l.Key = Column(column)
	return l
}

// Mapping is an ordered set of Lookups.
type Mapping []Lookup

// Resolve applies one Lookup to q.
func Resolve[Q query.Filterable[Q]](e *schema.Entity, l Lookup, rc *extract.Context, st extract.State, q Q) (Q, error) {
	if e == nil {
		return q, resterr.ImproperlyConfigured("lookup %q has no entity", l.Name)
	}
	col, err := l.Key.resolve(e)
	if err != nil {
		return q, err
	}
	raw, err := extract.Resolve(l.Source, l.Name).Extract(rc, st)
	if err != nil {
		return q, err
	}
	v, err := Coerce(col, raw)
	if err != nil {
		return q, err
	}
	return q.Eq(col.Name, v), nil
}

// ResolveAll applies every Lookup of m in order.  The first failure stops.
func ResolveAll[Q query.Filterable[Q]](e *schema.Entity, m Mapping, rc *extract.Context, st extract.State, q Q) (Q, error) {
	cur := q
	for _, l := range m {
		next, err := Resolve(e, l, rc, st, cur)
		if err != nil {
			return q, err
		}
		cur = next
	}
	return cur, nil
}

// Filter adapts a Mapping to a filter-chain item.  Inside a chain a missing
// key is skipped like any other absent argument.
func Filter[Q query.Filterable[Q]](e *schema.Entity, m Mapping) chain.Item[Q] {
	return chain.ItemFunc[Q](func(rc *extract.Context, st extract.State, q Q) (Q, error) {
		return ResolveAll(e, m, rc, st, q)
	})
}

// Coerce converts raw into a predicate value for col.
func Coerce(col schema.Column, raw string) (any, error) {
	switch col.Type {
	case schema.String, schema.Char, schema.Text:
		return raw, nil
	case schema.Blob:
		return []byte(raw), nil
	case schema.Integer:
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return nil, resterr.ImproperlyConfigured("column %q: %q is not an integer", col.Name, raw)
		}
		return int32(n), nil
	case schema.BigInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, resterr.ImproperlyConfigured("column %q: %q is not an integer", col.Name, raw)
		}
		return n, nil
	}
	return nil, resterr.ImproperlyConfigured("column %q: lookups on %s columns are not supported", col.Name, col.Type)
}
