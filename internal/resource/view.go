package resource

import (
	"encoding/json"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/resterr"
)

// View serves one request.  A returned error is rendered by Handler; a view
// that returns nil has written its own response.
type View interface {
	Serve(w http.ResponseWriter, rc *extract.Context, st extract.State) error
}

// ViewFunc adapts a function to View.
type ViewFunc func(w http.ResponseWriter, rc *extract.Context, st extract.State) error

func (f ViewFunc) Serve(w http.ResponseWriter, rc *extract.Context, st extract.State) error {
	return f(w, rc, st)
}

// Named views label metrics, spans, and log lines.
type Named interface {
	Name() string
}

func viewName(v View) string {
	if n, ok := v.(Named); ok {
		return n.Name()
	}
	return "custom"
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func dbFrom(st extract.State) (*sqlx.DB, error) {
	if st.DB == nil {
		return nil, resterr.ImproperlyConfigured("no database handle in state")
	}
	return st.DB, nil
}
