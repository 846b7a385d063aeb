// internal/query/query.go
//
// Immutable SQL builders.
//
// Context
// -------
// The pipeline never executes SQL.  It threads builder values through the
// filter chain, each step returning a new value, and the views render the
// final builder with ToSQL() and run it through sqlx.  Builders share no
// mutable state with the values they were derived from, so a step that
// fails halfway cannot leave a half-applied query behind.
//
// Capabilities
// ------------
// Chain steps are written against the small interfaces at the bottom of this
// file rather than against Select, so the same lookup or filter works for a
// Select and a Delete.
//
// Notes
// -----
//   - Placeholders are always "?".  Callers Rebind() for their driver.
//   - Identifiers are checked on render, not on construction, so a bad
//     column surfaces as ImproperlyConfigured at request time with the
//     offending name in the message.
package query

import (
	"regexp"
	"slices"
	"strings"

	"github.com/yanizio/adept-rest/internal/resterr"
)

// Op is a comparison operator.
type Op string

const (
	OpEq   Op = "="
	OpNe   Op = "<>"
	OpLt   Op = "<"
	OpLte  Op = "<="
	OpGt   Op = ">"
	OpGte  Op = ">="
	OpLike Op = "LIKE"
)

// Cond is one predicate.  Conditions on a builder are always ANDed.
type Cond struct {
	Column string
	Op     Op
	Value  any
}

// Eq builds an equality Cond.
func Eq(column string, v any) Cond { return Cond{Column: column, Op: OpEq, Value: v} }

// Order is one ORDER BY term.
type Order struct {
	Column string
	Desc   bool
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

func checkIdent(kind, name string) error {
	if !identRe.MatchString(name) {
		return resterr.ImproperlyConfigured("invalid %s identifier %q", kind, name)
	}
	return nil
}

func validOp(op Op) bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLte, OpGt, OpGte, OpLike:
		return true
	}
	return false
}

// whereSQL renders "WHERE a = ? AND b = ?" (or "") and appends the args.
func whereSQL(b *strings.Builder, conds []Cond, args []any) ([]any, error) {
	for i, c := range conds {
		if err := checkIdent("column", c.Column); err != nil {
			return nil, err
		}
		if !validOp(c.Op) {
			return nil, resterr.ImproperlyConfigured("unsupported operator %q on %q", c.Op, c.Column)
		}
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		if c.Value == nil {
			switch c.Op {
			case OpEq:
				b.WriteString(c.Column + " IS NULL")
				continue
			case OpNe:
				b.WriteString(c.Column + " IS NOT NULL")
				continue
			}
		}
		b.WriteString(c.Column + " " + string(c.Op) + " ?")
		args = append(args, c.Value)
	}
	return args, nil
}

// appendCond copies before appending so siblings never share a backing array.
func appendCond(conds []Cond, c Cond) []Cond {
	out := slices.Clip(slices.Clone(conds))
	return append(out, c)
}

// -----------------------------------------------------------------------------
// Capabilities
// -----------------------------------------------------------------------------

// Filterable builders accept AND-ed equality predicates.
type Filterable[Q any] interface {
	Eq(column string, v any) Q
}

// Conditional builders accept arbitrary AND-ed predicates.
type Conditional[Q any] interface {
	Where(c Cond) Q
}

// Orderable builders accept ORDER BY terms.  A leading "-" means DESC.
type Orderable[Q any] interface {
	OrderBy(columns ...string) Q
}

// Paginated builders accept a LIMIT/OFFSET window.
type Paginated[Q any] interface {
	Paginate(limit, offset uint64) Q
}
