package resource

import (
	"fmt"
	"net/http"

	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/lookup"
	"github.com/yanizio/adept-rest/internal/query"
	"github.com/yanizio/adept-rest/internal/resterr"
)

// DeleteView answers DELETE on one member with 204, or 404 when nothing
// matched.  The resource filters scope the DELETE exactly as they scope
// DetailView: only their WHERE conditions are used; ordering and windows
// are ignored.  A row the detail view would hide cannot be deleted.
type DeleteView[M any] struct {
	R *Resource[M]
}

func (v *DeleteView[M]) Name() string { return "delete" }

func (v *DeleteView[M]) Serve(w http.ResponseWriter, rc *extract.Context, st extract.State) error {
	db, err := dbFrom(st)
	if err != nil {
		return err
	}

	d, err := lookup.ResolveAll(v.R.Entity, v.R.Lookup, rc, st, query.DeleteFrom(v.R.Entity.Table))
	if err != nil {
		return err
	}
	scope, err := v.R.Filters.Apply(rc, st, query.From(v.R.Entity.Table))
	if err != nil {
		return err
	}
	for _, c := range scope.Conditions() {
		d = d.Where(c)
	}
	sqlStr, args, err := d.ToSQL()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(rc.Ctx(), db.Rebind(sqlStr), args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", v.R.Entity.Table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return resterr.ErrNotFound
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
