package extract

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/adept-rest/internal/resterr"
)

func newCtx(t *testing.T, target string, params map[string]string) *Context {
	t.Helper()
	rc, err := NewContext(http.MethodGet, target, params)
	require.NoError(t, err)
	return rc
}

func TestPathAndQueryValue(t *testing.T) {
	rc := newCtx(t, "/notes/7?status=open&empty=", map[string]string{"id": "7"})

	v, err := PathValue("id").Extract(rc, State{})
	require.NoError(t, err)
	assert.Equal(t, "7", v)

	v, err = QueryValue("status").Extract(rc, State{})
	require.NoError(t, err)
	assert.Equal(t, "open", v)

	v, err = QueryValue("empty").Extract(rc, State{})
	require.NoError(t, err)
	assert.Equal(t, "", v)

	_, err = QueryValue("missing").Extract(rc, State{})
	require.Error(t, err)
	assert.True(t, resterr.IsNoMatch(err))

	var me *MissingError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, SourceQuery, me.Source)
}

func TestTakePathConsumes(t *testing.T) {
	rc := newCtx(t, "/notes/7", map[string]string{"id": "7"})

	v, err := TakePath("id").Extract(rc, State{})
	require.NoError(t, err)
	assert.Equal(t, "7", v)

	_, err = PathValue("id").Extract(rc, State{})
	assert.True(t, resterr.IsNoMatch(err))
}

func TestCloneIsIndependent(t *testing.T) {
	rc := newCtx(t, "/notes/7?a=1", map[string]string{"id": "7"})
	rc.SetHeader("X-Mode", "full")

	cp := rc.Clone()
	_, _ = cp.TakeParam("id")
	cp.SetHeader("X-Mode", "brief")

	v, ok := rc.Param("id")
	assert.True(t, ok)
	assert.Equal(t, "7", v)
	h, _ := rc.Header("X-Mode")
	assert.Equal(t, "full", h)
}

func TestFromRequestCopiesChiParams(t *testing.T) {
	var got *Context
	r := chi.NewRouter()
	r.Get("/notes/{id}", func(w http.ResponseWriter, req *http.Request) {
		got = FromRequest(req)
	})

	req := httptest.NewRequest(http.MethodGet, "/notes/42?limit=5", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	id, ok := got.Param("id")
	assert.True(t, ok)
	assert.Equal(t, "42", id)
	assert.Equal(t, "limit=5", got.RawQuery())
	assert.Equal(t, http.MethodGet, got.Method())
}

type tenantHeader struct {
	Name string
}

func (h *tenantHeader) FromRequest(rc *Context, st State) error {
	v, err := Header("X-Tenant").Extract(rc, st)
	if err != nil {
		return err
	}
	h.Name = v
	return nil
}

func TestSelf(t *testing.T) {
	rc := newCtx(t, "/", nil)
	rc.SetHeader("X-Tenant", "acme")

	got, err := Self[tenantHeader]().Extract(rc, State{})
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Name)
}

func TestOptional(t *testing.T) {
	rc := newCtx(t, "/?n=3", nil)

	got, err := Optional(QueryValue("missing")).Extract(rc, State{})
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := Optional(QueryValue("n")).Extract(rc, State{})
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "3", *n)

	rc = newCtx(t, "/?n=abc", nil)
	_, err = Optional(Int64Query("n")).Extract(rc, State{})
	var iqp *resterr.InvalidQueryParameterError
	assert.True(t, errors.As(err, &iqp))
}

func TestAllStopsAtFirstFailure(t *testing.T) {
	rc := newCtx(t, "/?a=1", nil)
	calls := 0
	counting := Func[string](func(*Context, State) (string, error) {
		calls++
		return "x", nil
	})

	_, err := All(rc, State{},
		Erase(QueryValue("a")),
		Erase(QueryValue("b")),
		Erase[string](counting),
	)
	require.Error(t, err)
	assert.True(t, resterr.IsNoMatch(err))
	assert.Equal(t, 0, calls)

	args, err := All(rc, State{}, Erase(QueryValue("a")), Erase[string](counting))
	require.NoError(t, err)
	assert.Equal(t, []any{"1", "x"}, args)

	s, err := As[string](args, 1)
	require.NoError(t, err)
	assert.Equal(t, "x", s)

	_, err = As[int](args, 0)
	var ic *resterr.ImproperlyConfiguredError
	assert.True(t, errors.As(err, &ic))
}

func TestStateValues(t *testing.T) {
	type key struct{}
	base := State{}
	withA := base.WithValue(key{}, "a")
	withB := withA.WithValue(key{}, "b")

	assert.Nil(t, base.Value(key{}))
	assert.Equal(t, "a", withA.Value(key{}))
	assert.Equal(t, "b", withB.Value(key{}))
	assert.NotNil(t, base.Log())
}

func TestUserAgentAndClientIP(t *testing.T) {
	rc := newCtx(t, "/", nil)
	rc.SetHeader("User-Agent", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
	rc.SetHeader("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	a, err := UserAgent().Extract(rc, State{})
	require.NoError(t, err)
	assert.True(t, a.IsBot)

	ip, err := ClientIP().Extract(rc, State{})
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.9", ip.String())

	_, err = Country().Extract(rc, State{})
	assert.True(t, resterr.IsNoMatch(err))
}
