package query

import (
	"slices"
	"strings"

	"github.com/yanizio/adept-rest/internal/resterr"
)

// Delete is an immutable DELETE builder.
type Delete struct {
	table string
	where []Cond
}

// DeleteFrom starts a DELETE.
func DeleteFrom(table string) Delete { return Delete{table: table} }

func (d Delete) Where(c Cond) Delete {
	d.where = appendCond(d.where, c)
	return d
}

func (d Delete) Eq(column string, v any) Delete { return d.Where(Eq(column, v)) }

func (d Delete) Conditions() []Cond { return slices.Clone(d.where) }

// ToSQL refuses to render an unconditional DELETE.
func (d Delete) ToSQL() (string, []any, error) {
	if err := checkIdent("table", d.table); err != nil {
		return "", nil, err
	}
	if len(d.where) == 0 {
		return "", nil, resterr.ImproperlyConfigured("refusing DELETE on %q without conditions", d.table)
	}
	var b strings.Builder
	b.WriteString("DELETE FROM " + d.table)
	args, err := whereSQL(&b, d.where, nil)
	if err != nil {
		return "", nil, err
	}
	return b.String(), args, nil
}

// Insert is an immutable single-row INSERT builder.  Columns render in the
// order they were set.
type Insert struct {
	table   string
	columns []string
	values  []any
}

// Into starts an INSERT.
func Into(table string) Insert { return Insert{table: table} }

// Set adds one column value.
func (i Insert) Set(column string, v any) Insert {
	i.columns = append(slices.Clip(slices.Clone(i.columns)), column)
	i.values = append(slices.Clip(slices.Clone(i.values)), v)
	return i
}

func (i Insert) ToSQL() (string, []any, error) {
	if err := checkIdent("table", i.table); err != nil {
		return "", nil, err
	}
	if len(i.columns) == 0 {
		return "", nil, resterr.ImproperlyConfigured("INSERT into %q has no columns", i.table)
	}
	for _, c := range i.columns {
		if err := checkIdent("column", c); err != nil {
			return "", nil, err
		}
	}
	ph := strings.TrimSuffix(strings.Repeat("?, ", len(i.columns)), ", ")
	q := "INSERT INTO " + i.table + " (" + strings.Join(i.columns, ", ") + ") VALUES (" + ph + ")"
	return q, slices.Clone(i.values), nil
}
