package resource

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/reflectx"

	"github.com/yanizio/adept-rest/internal/callback"
	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/query"
	"github.com/yanizio/adept-rest/internal/resterr"
	"github.com/yanizio/adept-rest/internal/schema"
)

// MaxBodyBytes caps create payloads.
const MaxBodyBytes = 1 << 20

// validator instance (package-level singleton); field errors are keyed by
// the JSON name the client sent.
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}()

// CreateView answers POST on the collection.
//
// Flow: decode JSON into a fresh *M -> callback chain -> struct validation
// -> INSERT of every non-auto column -> 201 with the stored model.
type CreateView[M any] struct {
	R *Resource[M]
}

func (v *CreateView[M]) Name() string { return "create" }

func (v *CreateView[M]) Serve(w http.ResponseWriter, rc *extract.Context, st extract.State) error {
	db, err := dbFrom(st)
	if err != nil {
		return err
	}

	m, err := decode[M](rc)
	if err != nil {
		return err
	}
	m, err = v.R.Callbacks.Apply(rc, st, m)
	if err != nil {
		return err
	}
	if !v.R.SkipValidation {
		if err := validateModel(rc, m); err != nil {
			return err
		}
	}

	ins, err := insertFor(v.R.Entity, m)
	if err != nil {
		return err
	}
	sqlStr, args, err := ins.ToSQL()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(rc.Ctx(), db.Rebind(sqlStr), args...)
	if err != nil {
		return fmt.Errorf("insert %s: %w", v.R.Entity.Table, err)
	}

	// Drivers without LastInsertId (pgx) leave the key as the client or a
	// callback set it.
	if pk, ok := v.R.Entity.Column(v.R.Entity.PrimaryKey); ok && pk.Auto {
		if id, err := res.LastInsertId(); err == nil {
			if err := callback.Set(m, pk.Name, id); err != nil {
				st.Log().Debug("insert id not assignable to primary key")
			}
		}
	}
	return writeJSON(w, http.StatusCreated, m)
}

func decode[M any](rc *extract.Context) (*M, error) {
	r := rc.Request()
	if r == nil || r.Body == nil {
		return nil, &resterr.InvalidBodyError{Reason: "missing body"}
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	m := new(M)
	if err := dec.Decode(m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &resterr.InvalidBodyError{Reason: "empty body"}
		}
		return nil, &resterr.InvalidBodyError{Reason: err.Error()}
	}
	return m, nil
}

func validateModel(rc *extract.Context, m any) error {
	err := validate.StructCtx(rc.Ctx(), m)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return resterr.ImproperlyConfigured("validation: %v", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return &resterr.InvalidBodyError{Reason: "validation failed", Fields: fields}
}

func insertFor(e *schema.Entity, m any) (query.Insert, error) {
	rv := reflect.Indirect(reflect.ValueOf(m))
	if rv.Kind() != reflect.Struct {
		return query.Insert{}, resterr.ImproperlyConfigured("cannot insert %T", m)
	}
	ins := query.Into(e.Table)
	for _, c := range e.Writable() {
		f := reflectx.FieldByIndexesReadOnly(rv, c.Index)
		if !f.IsValid() {
			ins = ins.Set(c.Name, nil)
			continue
		}
		ins = ins.Set(c.Name, f.Interface())
	}
	return ins, nil
}
