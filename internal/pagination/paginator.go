package pagination

import (
	"fmt"
	"math"

	"github.com/yanizio/adept-rest/internal/chain"
	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/query"
	"github.com/yanizio/adept-rest/internal/resterr"
)

// Window is a resolved page/limit pair.
type Window struct {
	Page  Page  `json:"page"`
	Limit Limit `json:"limit"`
}

// Offset is (page - 1) * limit.
func (w Window) Offset() uint64 {
	return (uint64(PageOf(uint64(w.Page))) - 1) * uint64(w.Limit)
}

// Paginator bundles the per-resource pagination policy.  It is an
// extract.Extractor[Window].
type Paginator struct {
	Names        ParamNames
	DefaultPage  Page
	DefaultLimit Limit
	Constraint   Constraint
}

// New returns a Paginator with unprefixed names and page 1 as default.
func New(defaultLimit Limit, c Constraint) Paginator {
	return Paginator{
		Names:        NewParamNames(),
		DefaultPage:  FirstPage,
		DefaultLimit: defaultLimit,
		Constraint:   c,
	}
}

// WithPrefix returns a copy reading "<prefix>_page" / "<prefix>_limit".
func (p Paginator) WithPrefix(prefix string) Paginator {
	p.Names = NewPrefixed(prefix)
	return p
}

// Extract resolves the window from the request's raw query.
func (p Paginator) Extract(rc *extract.Context, _ extract.State) (Window, error) {
	if p.DefaultLimit == 0 {
		return Window{}, resterr.ImproperlyConfigured("paginator for %q has no default limit", p.Names.Limit)
	}
	pg, l, err := Resolve(p.Names, rc.RawQuery(), p.DefaultPage, p.DefaultLimit, p.Constraint)
	if err != nil {
		return Window{}, err
	}
	if l > 0 && uint64(pg)-1 > math.MaxUint64/uint64(l) {
		return Window{}, resterr.InvalidQueryParameter(p.Names.Page,
			fmt.Errorf("page %d with limit %d is out of range", pg, l))
	}
	return Window{Page: pg, Limit: l}, nil
}

// Filter returns a filter-chain item that applies the window to any
// paginated builder.
func Filter[Q query.Paginated[Q]](p Paginator) chain.Item[Q] {
	return chain.Step1[Q, Window](p, func(q Q, w Window) (Q, error) {
		return q.Paginate(uint64(w.Limit), w.Offset()), nil
	})
}
