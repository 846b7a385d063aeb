// internal/filter/filter.go
//
// The filter chain: query-builder refinement driven by request data.
//
// Context
// -------
// A resource owns one filter chain.  Each filter extracts its arguments
// (path value, query value, a resolved pagination window...) and returns a
// refined builder.  A filter whose argument is absent is skipped, so a list
// endpoint with "?status=open" narrows and one without it does not.
//
// Typical wiring
//
//	f := filter.New[query.Select](
//		filter.Eq[query.Select]("status", extract.QueryValue("status")),
//		filter.Ordering[query.Select]("ordering", "created_at", "title"),
//	)
//
// Notes
// -----
//   - Filters are written against the capabilities in internal/query, not
//     a concrete builder.
//   - Require() turns "argument absent" into a hard 400 for the few filters
//     that must not be skipped.
package filter

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/yanizio/adept-rest/internal/chain"
	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/query"
	"github.com/yanizio/adept-rest/internal/resterr"
)

// Name labels filter chains in metrics and logs.
const Name = "filter"

// New builds a filter chain over builder type Q.
func New[Q any](filters ...chain.Item[Q]) *chain.Chain[Q] {
	return chain.New(Name, filters...)
}

// Func adapts a one-argument refinement.
func Func[Q, A any](e extract.Extractor[A], fn func(q Q, a A) (Q, error)) chain.Item[Q] {
	return chain.Step1(e, fn)
}

// Eq narrows to rows where column equals the extracted value.
func Eq[Q query.Filterable[Q], V any](column string, e extract.Extractor[V]) chain.Item[Q] {
	return chain.Step1(e, func(q Q, v V) (Q, error) {
		return q.Eq(column, v), nil
	})
}

// Where narrows with an arbitrary operator.
func Where[Q query.Conditional[Q], V any](column string, op query.Op, e extract.Extractor[V]) chain.Item[Q] {
	return chain.Step1(e, func(q Q, v V) (Q, error) {
		return q.Where(query.Cond{Column: column, Op: op, Value: v}), nil
	})
}

// Contains narrows with "column LIKE %v%".
func Contains[Q query.Conditional[Q]](column string, e extract.Extractor[string]) chain.Item[Q] {
	return chain.Step1(e, func(q Q, v string) (Q, error) {
		r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
		return q.Where(query.Cond{Column: column, Op: query.OpLike, Value: "%" + r.Replace(v) + "%"}), nil
	})
}

// OrderBy applies a fixed ordering.  It always applies.
func OrderBy[Q query.Orderable[Q]](columns ...string) chain.Item[Q] {
	return chain.Step0(func(q Q) (Q, error) {
		return q.OrderBy(columns...), nil
	})
}

// Ordering reads a comma-separated ordering from the named query parameter.
// Each term may carry a leading "-".  Terms outside allowed are a 400.
func Ordering[Q query.Orderable[Q]](param string, allowed ...string) chain.Item[Q] {
	return chain.Step1(extract.QueryValue(param), func(q Q, raw string) (Q, error) {
		var cols []string
		for _, term := range strings.Split(raw, ",") {
			term = strings.TrimSpace(term)
			if term == "" {
				continue
			}
			col := strings.TrimPrefix(term, "-")
			if !slices.Contains(allowed, col) {
				return q, resterr.InvalidQueryParameter(param,
					fmt.Errorf("cannot order by %q", col))
			}
			cols = append(cols, term)
		}
		if len(cols) == 0 {
			return q, resterr.ErrNoMatch
		}
		return q.OrderBy(cols...), nil
	})
}

// Require turns a skipped filter into a 400 naming param.
func Require[Q any](param string, item chain.Item[Q]) chain.Item[Q] {
	return chain.ItemFunc[Q](func(rc *extract.Context, st extract.State, q Q) (Q, error) {
		out, err := item.Apply(rc, st, q)
		if err != nil && resterr.IsNoMatch(err) {
			return q, resterr.InvalidQueryParameter(param, errors.New("required"))
		}
		return out, err
	})
}
