package resource

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/lookup"
	"github.com/yanizio/adept-rest/internal/resterr"
)

// DetailView answers GET on one member.  The lookup mapping addresses the
// row; the resource filters still apply, so a scoped filter chain also
// scopes detail.
type DetailView[M any] struct {
	R *Resource[M]
}

func (v *DetailView[M]) Name() string { return "detail" }

func (v *DetailView[M]) Serve(w http.ResponseWriter, rc *extract.Context, st extract.State) error {
	db, err := dbFrom(st)
	if err != nil {
		return err
	}

	q, err := lookup.ResolveAll(v.R.Entity, v.R.Lookup, rc, st, v.R.baseSelect())
	if err != nil {
		return err
	}
	q, err = v.R.Filters.Apply(rc, st, q)
	if err != nil {
		return err
	}

	sqlStr, args, err := q.Paginate(1, 0).ToSQL()
	if err != nil {
		return err
	}
	var m M
	if err := db.GetContext(rc.Ctx(), &m, db.Rebind(sqlStr), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return resterr.ErrNotFound
		}
		return fmt.Errorf("get %s: %w", v.R.Entity.Table, err)
	}
	return writeJSON(w, http.StatusOK, &m)
}
