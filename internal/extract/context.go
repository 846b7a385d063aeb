// internal/extract/context.go
//
// Per-request Context.
//
// Context
// -------
// A *Context is built once per request by resource.Handler (or by NewContext
// in tests) and handed, by pointer, to every extraction call made while that
// request is served.  It bundles:
//
//   - method, path, and raw query string,
//   - route parameters (chi URL params),
//   - parsed query values and request headers,
//   - the originating *http.Request, when there is one.
//
// Extractors may mutate it; TakeParam, for example, removes a matched route
// parameter so later chain members cannot consume it twice.  Clone() returns
// an independent snapshot, which is how conditional dispatch keeps a losing
// predicate's mutations away from the winner.
//
// Notes
// -----
//   - A Context is never shared across requests and is not safe for
//     concurrent use.
//   - Oxford commas, two spaces after periods.
package extract

import (
	"context"
	"maps"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// Context is the mutable request bag.  Zero value is unusable; construct with
// NewContext or FromRequest.
type Context struct {
	ctx      context.Context
	request  *http.Request
	method   string
	path     string
	rawQuery string
	params   map[string]string
	query    url.Values
	header   http.Header
}

// FromRequest builds a Context from r, copying chi route parameters when a
// chi route context is present.
func FromRequest(r *http.Request) *Context {
	params := make(map[string]string)
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, k := range rctx.URLParams.Keys {
			if k == "" || i >= len(rctx.URLParams.Values) {
				continue
			}
			params[k] = rctx.URLParams.Values[i]
		}
	}
	return &Context{
		ctx:      r.Context(),
		request:  r,
		method:   r.Method,
		path:     r.URL.Path,
		rawQuery: r.URL.RawQuery,
		params:   params,
		query:    r.URL.Query(),
		header:   r.Header.Clone(),
	}
}

// NewContext builds a Context without an *http.Request.  target is a path
// with an optional query string, e.g. "/notes?page=2".  Used by hosts that do
// not speak net/http and by tests.
func NewContext(method, target string, params map[string]string) (*Context, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	p := make(map[string]string, len(params))
	maps.Copy(p, params)
	return &Context{
		ctx:      context.Background(),
		method:   method,
		path:     u.Path,
		rawQuery: u.RawQuery,
		params:   p,
		query:    u.Query(),
		header:   make(http.Header),
	}, nil
}

// Ctx returns the request's context.Context.
func (c *Context) Ctx() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// WithCtx replaces the context.Context, e.g. after a tracing span starts.
func (c *Context) WithCtx(ctx context.Context) { c.ctx = ctx }

// Request returns the originating request or nil.
func (c *Context) Request() *http.Request { return c.request }

func (c *Context) Method() string   { return c.method }
func (c *Context) Path() string     { return c.path }
func (c *Context) RawQuery() string { return c.rawQuery }

// Param returns a route parameter.
func (c *Context) Param(name string) (string, bool) {
	v, ok := c.params[name]
	return v, ok
}

// TakeParam returns a route parameter and removes it from the Context.
func (c *Context) TakeParam(name string) (string, bool) {
	v, ok := c.params[name]
	if ok {
		delete(c.params, name)
	}
	return v, ok
}

// SetParam adds or replaces a route parameter.
func (c *Context) SetParam(name, value string) { c.params[name] = value }

// QueryValue returns the first value for a query key.  A key present with an
// empty value reports ok == true.
func (c *Context) QueryValue(name string) (string, bool) {
	vs, ok := c.query[name]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Query returns a copy of the parsed query values.
func (c *Context) Query() url.Values {
	out := make(url.Values, len(c.query))
	for k, v := range c.query {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Header returns the first value of a request header.
func (c *Context) Header(name string) (string, bool) {
	vs := c.header.Values(name)
	if len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// SetHeader replaces a request header value.
func (c *Context) SetHeader(name, value string) { c.header.Set(name, value) }

// Clone returns an independent snapshot.  The *http.Request and
// context.Context are shared; maps are copied.
func (c *Context) Clone() *Context {
	cp := *c
	cp.params = maps.Clone(c.params)
	if cp.params == nil {
		cp.params = make(map[string]string)
	}
	cp.query = c.Query()
	cp.header = c.header.Clone()
	if cp.header == nil {
		cp.header = make(http.Header)
	}
	return &cp
}
