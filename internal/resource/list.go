package resource

import (
	"fmt"
	"net/http"

	"github.com/yanizio/adept-rest/internal/chain"
	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/pagination"
	"github.com/yanizio/adept-rest/internal/query"
)

// ListPage is the list response envelope.
type ListPage[M any] struct {
	Page    pagination.Page  `json:"page"`
	Limit   pagination.Limit `json:"limit"`
	Count   int64            `json:"count"`
	Results []M              `json:"results"`
}

// ListView answers GET on the collection.
//
// Flow: base SELECT -> filter chain -> paginator window -> COUNT(*) with the
// same predicates -> windowed SELECT.
type ListView[M any] struct {
	R *Resource[M]

	// Filters overrides R.Filters when set.
	Filters *chain.Chain[query.Select]
}

func (v *ListView[M]) Name() string { return "list" }

func (v *ListView[M]) filters() *chain.Chain[query.Select] {
	if v.Filters != nil {
		return v.Filters
	}
	return v.R.Filters
}

func (v *ListView[M]) Serve(w http.ResponseWriter, rc *extract.Context, st extract.State) error {
	db, err := dbFrom(st)
	if err != nil {
		return err
	}

	q, err := v.filters().Apply(rc, st, v.R.baseSelect())
	if err != nil {
		return err
	}
	win, err := v.R.Paginator.Extract(rc, st)
	if err != nil {
		return err
	}

	countSQL, countArgs, err := q.Count().ToSQL()
	if err != nil {
		return err
	}
	var total int64
	if err := db.GetContext(rc.Ctx(), &total, db.Rebind(countSQL), countArgs...); err != nil {
		return fmt.Errorf("count %s: %w", v.R.Entity.Table, err)
	}

	sqlStr, args, err := q.Paginate(uint64(win.Limit), win.Offset()).ToSQL()
	if err != nil {
		return err
	}
	rows := []M{}
	if err := db.SelectContext(rc.Ctx(), &rows, db.Rebind(sqlStr), args...); err != nil {
		return fmt.Errorf("list %s: %w", v.R.Entity.Table, err)
	}

	return writeJSON(w, http.StatusOK, ListPage[M]{
		Page:    win.Page,
		Limit:   win.Limit,
		Count:   total,
		Results: rows,
	})
}
