package lookup

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/filter"
	"github.com/yanizio/adept-rest/internal/query"
	"github.com/yanizio/adept-rest/internal/resterr"
	"github.com/yanizio/adept-rest/internal/schema"
)

type note struct {
	ID      int64   `db:"id" rest:"pk"`
	OwnerID int32   `db:"owner_id"`
	Slug    string  `db:"slug" rest:"type=text"`
	Hash    []byte  `db:"hash"`
	Score   float64 `db:"score"`
}

func entity(t *testing.T) *schema.Entity {
	t.Helper()
	e, err := schema.Of[note]()
	require.NoError(t, err)
	return e
}

func reqCtx(t *testing.T, target string, params map[string]string) *extract.Context {
	t.Helper()
	rc, err := extract.NewContext(http.MethodGet, target, params)
	require.NoError(t, err)
	return rc
}

func TestResolvePrimaryKeyFromPath(t *testing.T) {
	rc := reqCtx(t, "/notes/42", map[string]string{"pk": "42"})

	q, err := Resolve(entity(t), Path("pk"), rc, extract.State{}, query.From("note"))
	require.NoError(t, err)
	assert.Equal(t, []query.Cond{query.Eq("id", int64(42))}, q.Conditions())
}

func TestIntegerColumnCoercion(t *testing.T) {
	l := Query("owner").On("owner_id")

	q, err := Resolve(entity(t), l, reqCtx(t, "/?owner=42", nil), extract.State{}, query.From("note"))
	require.NoError(t, err)
	assert.Equal(t, []query.Cond{query.Eq("owner_id", int32(42))}, q.Conditions())

	_, err = Resolve(entity(t), l, reqCtx(t, "/?owner=abc", nil), extract.State{}, query.From("note"))
	var ic *resterr.ImproperlyConfiguredError
	require.True(t, errors.As(err, &ic))
}

func TestCoerce(t *testing.T) {
	e := entity(t)
	col := func(name string) schema.Column {
		c, ok := e.Column(name)
		require.True(t, ok)
		return c
	}

	v, err := Coerce(col("slug"), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	v, err = Coerce(col("hash"), "ab")
	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), v)

	_, err = Coerce(col("owner_id"), "99999999999")
	assert.Error(t, err)

	_, err = Coerce(col("score"), "1.5")
	var ic *resterr.ImproperlyConfiguredError
	require.True(t, errors.As(err, &ic))
	assert.Contains(t, ic.Detail, "score")
}

func TestMissingValueIsNoMatch(t *testing.T) {
	_, err := Resolve(entity(t), Path("pk"), reqCtx(t, "/", nil), extract.State{}, query.From("note"))
	assert.True(t, resterr.IsNoMatch(err))
}

func TestUnknownColumnIsImproperlyConfigured(t *testing.T) {
	rc := reqCtx(t, "/?x=1", nil)
	_, err := Resolve(entity(t), Query("x").On("nope"), rc, extract.State{}, query.From("note"))
	assert.Equal(t, http.StatusInternalServerError, resterr.Status(err))
}

func TestMappingAndsEveryKey(t *testing.T) {
	rc := reqCtx(t, "/owners/7/notes/hello", map[string]string{"owner": "7", "slug": "hello"})
	m := Mapping{Path("owner").On("owner_id"), Path("slug").On("slug")}

	f := filter.New[query.Select](Filter[query.Select](entity(t), m))
	q, err := f.Apply(rc, extract.State{}, query.From("note"))
	require.NoError(t, err)
	assert.Equal(t, []query.Cond{
		query.Eq("owner_id", int32(7)),
		query.Eq("slug", "hello"),
	}, q.Conditions())

	d, err := ResolveAll(entity(t), m, rc, extract.State{}, query.DeleteFrom("note"))
	require.NoError(t, err)
	assert.Len(t, d.Conditions(), 2)
}
