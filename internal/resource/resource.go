// internal/resource/resource.go
//
// Declarative REST resources.
//
// Context
// -------
// A Resource[M] ties a model type to everything the request pipeline needs:
//
//   - the entity schema (table, columns, primary key) reflected from M
//   - a filter chain over query.Select, shared by list and detail
//   - a callback chain over *M, run by create before validation
//   - a paginator (names, default limit, limit policy)
//   - a lookup mapping that addresses one row for detail and delete
//
// Views (list.go, detail.go, create.go, delete.go, when.go) read this
// configuration; none of them mutate it.  Build a Resource at init time,
// tweak its chains, and then treat it as read-only.
//
// Usage
// -----
//
//	notes := resource.MustNew[Note]("notes")
//	notes.Filters.Add(filter.Eq[query.Select]("status", extract.QueryValue("status")))
//	notes.Callbacks.Add(callback.Touch[*Note]("created_at"))
//	r.Mount("/notes", notes.Routes(st))
package resource

import (
	"fmt"

	"github.com/yanizio/adept-rest/internal/callback"
	"github.com/yanizio/adept-rest/internal/chain"
	"github.com/yanizio/adept-rest/internal/filter"
	"github.com/yanizio/adept-rest/internal/lookup"
	"github.com/yanizio/adept-rest/internal/pagination"
	"github.com/yanizio/adept-rest/internal/query"
	"github.com/yanizio/adept-rest/internal/schema"
)

// DefaultLimit is used when a Resource is built without a paginator.
const DefaultLimit pagination.Limit = 20

// PKParam is the chi URL parameter the default lookup reads.
const PKParam = "pk"

// Resource configures the views for model M.
type Resource[M any] struct {
	Name      string
	Entity    *schema.Entity
	Filters   *chain.Chain[query.Select]
	Callbacks *chain.Chain[*M]
	Paginator pagination.Paginator
	Lookup    lookup.Mapping

	// SkipValidation disables go-playground/validator on create.
	SkipValidation bool
}

// New reflects M and returns a Resource with empty chains, the default
// paginator, and a primary-key lookup on the {pk} path parameter.
func New[M any](name string) (*Resource[M], error) {
	e, err := schema.Of[M]()
	if err != nil {
		return nil, fmt.Errorf("resource %s: %w", name, err)
	}
	return &Resource[M]{
		Name:      name,
		Entity:    e,
		Filters:   filter.New[query.Select](),
		Callbacks: callback.New[*M](),
		Paginator: pagination.New(DefaultLimit, pagination.Default()),
		Lookup:    lookup.Mapping{lookup.Path(PKParam)},
	}, nil
}

// MustNew is New for package-level declarations.
func MustNew[M any](name string) *Resource[M] {
	r, err := New[M](name)
	if err != nil {
		panic(err)
	}
	return r
}

// baseSelect selects every mapped column of the entity.
func (r *Resource[M]) baseSelect() query.Select {
	return query.From(r.Entity.Table, r.Entity.ColumnNames()...)
}
