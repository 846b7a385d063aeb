// internal/schema/schema.go
//
// Entity schema metadata derived from Go struct tags.
//
// Context
// -------
// Lookups need the declared storage type of a column, and views need the
// table name, the primary key, and which columns the database fills in
// itself.  All of that lives on the model struct:
//
//	type Note struct {
//		ID    int64  `db:"id"    rest:"pk,auto,type=bigint"`
//		Title string `db:"title" rest:"type=text" json:"title" validate:"required"`
//	}
//
// `db` names the column (the sqlx convention).  `rest` is a comma list of
// pk, auto (never INSERTed), and type=<ColumnType>.  Without type= the
// column type is inferred from the Go field type.
//
// Notes
// -----
//   - Of[M]() reflects once per type.  Concurrent first calls are collapsed
//     with singleflight; results live in a sync.Map.
//   - Field walking uses sqlx/reflectx, so embedded structs flatten the
//     same way they do when sqlx scans rows.
package schema

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx/reflectx"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/adept-rest/internal/metrics"
	"github.com/yanizio/adept-rest/internal/resterr"
)

// ColumnType is a declared storage type.
type ColumnType string

const (
	String     ColumnType = "string"
	Char       ColumnType = "char"
	Text       ColumnType = "text"
	Blob       ColumnType = "blob"
	Integer    ColumnType = "integer"
	BigInteger ColumnType = "bigint"
	Boolean    ColumnType = "boolean"
	Float      ColumnType = "float"
	Timestamp  ColumnType = "timestamp"
	Unknown    ColumnType = "unknown"
)

// Column is one mapped field.
type Column struct {
	Name  string
	Type  ColumnType
	Auto  bool // filled in by the database
	Index []int
}

// Entity is the schema of one table.
type Entity struct {
	Table      string
	PrimaryKey string
	Columns    []Column

	byName map[string]int
}

// Column looks a column up by name.
func (e *Entity) Column(name string) (Column, bool) {
	i, ok := e.byName[name]
	if !ok {
		return Column{}, false
	}
	return e.Columns[i], true
}

// ColumnNames returns every column in declaration order.
func (e *Entity) ColumnNames() []string {
	out := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		out[i] = c.Name
	}
	return out
}

// Writable returns the columns an INSERT should set.
func (e *Entity) Writable() []Column {
	var out []Column
	for _, c := range e.Columns {
		if !c.Auto {
			out = append(out, c)
		}
	}
	return out
}

// Tabler lets a model name its table.  Otherwise the lowercased type name
// is used.
type Tabler interface {
	TableName() string
}

var (
	mapper = reflectx.NewMapperFunc("db", strings.ToLower)
	cache  sync.Map // reflect.Type -> *Entity
	group  singleflight.Group
)

// Of returns the Entity for model type M (a struct or pointer to struct).
func Of[M any]() (*Entity, error) {
	t := reflect.TypeOf((*M)(nil)).Elem() // equivalent to reflect.TypeFor[M]() (Go 1.22+)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if e, ok := cache.Load(t); ok {
		return e.(*Entity), nil
	}
	v, err, _ := group.Do(flightKey(t), func() (any, error) {
		if e, ok := cache.Load(t); ok {
			return e, nil
		}
		e, err := build(t)
		if err != nil {
			return nil, err
		}
		metrics.SchemaCacheMissTotal.Inc()
		cache.Store(t, e)
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Entity), nil
}

// flightKey names t for singleflight.  Unnamed struct types have no
// name, so their full rendering (fields and tags) is part of the key.
func flightKey(t reflect.Type) string {
	return t.PkgPath() + "|" + t.String()
}

// MustOf is Of for package-level declarations.
func MustOf[M any]() *Entity {
	e, err := Of[M]()
	if err != nil {
		panic(err)
	}
	return e
}

func build(t reflect.Type) (*Entity, error) {
	if t.Kind() != reflect.Struct {
		return nil, resterr.ImproperlyConfigured("schema: %s is not a struct", t)
	}
	e := &Entity{Table: strings.ToLower(t.Name()), byName: map[string]int{}}
	if tb, ok := reflect.New(t).Interface().(Tabler); ok {
		e.Table = tb.TableName()
	}

	tm := mapper.TypeMap(t)
	for _, fi := range tm.Index {
		if fi.Embedded || fi.Name == "" || fi.Field.Tag.Get("db") == "-" || strings.Contains(fi.Path, ".") {
			continue
		}
		// nested struct columns other than time.Time are not mapped
		if len(fi.Children) > 0 && reflectx.Deref(fi.Field.Type) != reflect.TypeOf(time.Time{}) {
			continue
		}
		if _, dup := e.byName[fi.Path]; dup {
			continue
		}
		col := Column{Name: fi.Path, Index: fi.Index}
		for _, opt := range strings.Split(fi.Field.Tag.Get("rest"), ",") {
			switch opt = strings.TrimSpace(opt); {
			case opt == "pk":
				if e.PrimaryKey != "" {
					return nil, resterr.ImproperlyConfigured("schema: %s declares two primary keys", t)
				}
				e.PrimaryKey = col.Name
			case opt == "auto":
				col.Auto = true
			case strings.HasPrefix(opt, "type="):
				col.Type = ColumnType(strings.TrimPrefix(opt, "type="))
			}
		}
		if col.Type == "" {
			col.Type = infer(fi.Field.Type)
		}
		e.byName[col.Name] = len(e.Columns)
		e.Columns = append(e.Columns, col)
	}

	if e.PrimaryKey == "" {
		if _, ok := e.byName["id"]; ok {
			e.PrimaryKey = "id"
		}
	}
	return e, nil
}

func infer(t reflect.Type) ColumnType {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == reflect.TypeOf(time.Time{}) {
		return Timestamp
	}
	switch t.Kind() {
	case reflect.String:
		return String
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint8, reflect.Uint16:
		return Integer
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
		return BigInteger
	case reflect.Bool:
		return Boolean
	case reflect.Float32, reflect.Float64:
		return Float
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return Blob
		}
	}
	return Unknown
}
