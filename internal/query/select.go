package query

import (
	"slices"
	"strconv"
	"strings"
)

// Select is an immutable SELECT builder.
type Select struct {
	table   string
	columns []string
	where   []Cond
	order   []Order
	limit   uint64
	offset  uint64
	paged   bool
}

// From starts a SELECT.  No columns means "*".
func From(table string, columns ...string) Select {
	return Select{table: table, columns: slices.Clone(columns)}
}

func (s Select) Table() string { return s.table }

// Where ANDs c into the predicate set.
func (s Select) Where(c Cond) Select {
	s.where = appendCond(s.where, c)
	return s
}

// Eq ANDs "column = v".
func (s Select) Eq(column string, v any) Select { return s.Where(Eq(column, v)) }

// OrderBy appends ORDER BY terms; "-created_at" sorts descending.
func (s Select) OrderBy(columns ...string) Select {
	order := slices.Clip(slices.Clone(s.order))
	for _, c := range columns {
		if desc, ok := strings.CutPrefix(c, "-"); ok {
			order = append(order, Order{Column: desc, Desc: true})
			continue
		}
		order = append(order, Order{Column: c})
	}
	s.order = order
	return s
}

// Paginate sets the LIMIT/OFFSET window, replacing any earlier one.
func (s Select) Paginate(limit, offset uint64) Select {
	s.limit, s.offset, s.paged = limit, offset, true
	return s
}

// Conditions returns a copy of the predicate set.
func (s Select) Conditions() []Cond { return slices.Clone(s.where) }

// Ordering returns a copy of the ORDER BY terms.
func (s Select) Ordering() []Order { return slices.Clone(s.order) }

// Window reports the LIMIT/OFFSET, if one was set.
func (s Select) Window() (limit, offset uint64, ok bool) { return s.limit, s.offset, s.paged }

// Count derives "SELECT COUNT(*)" with the same predicates and no window or
// ordering.
func (s Select) Count() Select {
	return Select{table: s.table, columns: []string{"COUNT(*)"}, where: slices.Clone(s.where)}
}

// ToSQL renders the statement with "?" placeholders.
func (s Select) ToSQL() (string, []any, error) {
	if err := checkIdent("table", s.table); err != nil {
		return "", nil, err
	}
	var b strings.Builder
	b.WriteString("SELECT ")
	if len(s.columns) == 0 {
		b.WriteString("*")
	}
	for i, c := range s.columns {
		if c != "COUNT(*)" {
			if err := checkIdent("column", c); err != nil {
				return "", nil, err
			}
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c)
	}
	b.WriteString(" FROM " + s.table)

	args, err := whereSQL(&b, s.where, nil)
	if err != nil {
		return "", nil, err
	}

	for i, o := range s.order {
		if err := checkIdent("column", o.Column); err != nil {
			return "", nil, err
		}
		if i == 0 {
			b.WriteString(" ORDER BY ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(o.Column)
		if o.Desc {
			b.WriteString(" DESC")
		}
	}

	if s.paged {
		b.WriteString(" LIMIT " + strconv.FormatUint(s.limit, 10))
		b.WriteString(" OFFSET " + strconv.FormatUint(s.offset, 10))
	}
	return b.String(), args, nil
}
