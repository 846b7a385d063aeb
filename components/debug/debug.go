// components/debug/debug.go
//
// Debug component: echoes what the extractors see for the current request.
//
// Mounted at /debug.  Handy for checking proxy headers, GeoIP wiring, and
// UA parsing in a new deployment.  Absent values (no GeoIP database, no
// forwarded address) are reported as null rather than failing the request.
package debug

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/adept-rest/internal/component"
	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/middleware"
	"github.com/yanizio/adept-rest/internal/resource"
)

var _ component.Component = (*Comp)(nil)

// Comp implements component.Component; no state needed.
type Comp struct{}

func init() { component.Register(&Comp{}) }

func (c *Comp) Name() string         { return "debug" }
func (c *Comp) Migrations() []string { return nil }

func (c *Comp) Routes(env component.Env) chi.Router {
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/", resource.Handler("debug", resource.ViewFunc(echo), env.State))
	return r
}

// echo writes a JSON blob with selected context fields.
func echo(w http.ResponseWriter, rc *extract.Context, st extract.State) error {
	args, err := extract.All(rc, st,
		extract.Erase(extract.Optional(extract.ClientIP())),
		extract.Erase(extract.UserAgent()),
		extract.Erase(extract.Optional(extract.Country())),
	)
	if err != nil {
		return err
	}
	ip, _ := extract.As[*net.IP](args, 0)
	ua, _ := extract.As[extract.Agent](args, 1)
	country, _ := extract.As[*string](args, 2)

	out := map[string]any{
		"method":     rc.Method(),
		"path":       rc.Path(),
		"query":      rc.RawQuery(),
		"ip":         ip,
		"ua":         ua,
		"country":    country,
		"request_id": middleware.RequestIDFrom(rc.Ctx()),
	}

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
