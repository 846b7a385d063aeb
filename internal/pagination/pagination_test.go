package pagination

import (
	"errors"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/filter"
	"github.com/yanizio/adept-rest/internal/query"
	"github.com/yanizio/adept-rest/internal/resterr"
)

func TestLimitParsing(t *testing.T) {
	for _, n := range []uint64{1, 2, 10, 500, 1 << 40} {
		_, l, err := ParseQuery(NewParamNames(), "limit="+strconv.FormatUint(n, 10))
		require.NoError(t, err)
		require.NotNil(t, l)
		assert.Equal(t, Limit(n), *l)
	}

	for _, bad := range []string{"0", "abc", "-1", "", "1.5"} {
		_, _, err := ParseQuery(NewParamNames(), "limit="+bad)
		var iqp *resterr.InvalidQueryParameterError
		require.True(t, errors.As(err, &iqp), bad)
		assert.Equal(t, "limit", iqp.Name)
	}
}

func TestPageClampsZero(t *testing.T) {
	p, _, err := ParseQuery(NewParamNames(), "page=0")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, Page(1), *p)

	_, _, err = ParseQuery(NewParamNames(), "page=x")
	assert.Equal(t, http.StatusBadRequest, resterr.Status(err))
}

func TestConstraintLimit(t *testing.T) {
	tests := []struct {
		name      string
		c         Constraint
		requested Limit
		def       Limit
		want      Limit
	}{
		{"choices miss", Choices(10, 20, 50), 30, 20, 20},
		{"choices hit", Choices(10, 20, 50), 20, 20, 20},
		{"choices other hit", Choices(10, 20, 50), 50, 20, 50},
		{"default", Default(), 10, 20, 20},
		{"zero value is default", Constraint{}, 10, 20, 20},
		{"any", Any(), 10, 20, 10},
		{"static", Static(15), 10, 20, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.Limit(tt.requested, tt.def))
		})
	}
}

func TestPrefixedNames(t *testing.T) {
	assert.Equal(t, ParamNames{Page: "custom_page", Limit: "custom_limit"}, NewPrefixed("custom"))
	assert.Equal(t, ParamNames{Page: "custom_page", Limit: "custom_limit"}, NewPrefixed("custom__"))
	assert.Equal(t, NewParamNames(), NewPrefixed(""))
	assert.Equal(t, NewParamNames(), NewPrefixed("_"))
}

func TestParseQuery(t *testing.T) {
	p, l, err := ParseQuery(NewParamNames(), "page=2&limit=10")
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NotNil(t, l)
	assert.Equal(t, Page(2), *p)
	assert.Equal(t, Limit(10), *l)

	p, l, err = ParseQuery(NewParamNames(), "")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Nil(t, l)

	// other keys and the unprefixed names are ignored under a prefix
	p, l, err = ParseQuery(NewPrefixed("c"), "page=9&c_page=3&c_limit=5&x=y")
	require.NoError(t, err)
	assert.Equal(t, Page(3), *p)
	assert.Equal(t, Limit(5), *l)
}

func TestResolveDefaultsAndConstraint(t *testing.T) {
	p, l, err := Resolve(NewParamNames(), "", FirstPage, 20, Choices(10, 20, 50))
	require.NoError(t, err)
	assert.Equal(t, Page(1), p)
	assert.Equal(t, Limit(20), l)

	p, l, err = Resolve(NewParamNames(), "page=3&limit=30", FirstPage, 20, Choices(10, 20, 50))
	require.NoError(t, err)
	assert.Equal(t, Page(3), p)
	assert.Equal(t, Limit(20), l)
}

func TestParseConstraint(t *testing.T) {
	c, err := ParseConstraint("choices", []uint64{10, 25}, 0)
	require.NoError(t, err)
	assert.Equal(t, "choices(10,25)", c.String())

	c, err = ParseConstraint("Static", nil, 15)
	require.NoError(t, err)
	assert.Equal(t, Limit(15), c.Limit(1, 2))

	c, err = ParseConstraint("", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "default", c.String())

	_, err = ParseConstraint("choices", nil, 0)
	assert.Error(t, err)
	_, err = ParseConstraint("static", nil, 0)
	assert.Error(t, err)
	_, err = ParseConstraint("bogus", nil, 0)
	assert.Error(t, err)
}

func TestPaginatorFilter(t *testing.T) {
	rc, err := extract.NewContext(http.MethodGet, "/notes?page=3&limit=10", nil)
	require.NoError(t, err)

	f := filter.New[query.Select](Filter[query.Select](New(20, Any())))
	q, err := f.Apply(rc, extract.State{}, query.From("note"))
	require.NoError(t, err)

	limit, offset, ok := q.Window()
	assert.True(t, ok)
	assert.Equal(t, uint64(10), limit)
	assert.Equal(t, uint64(20), offset)
}

func TestPaginatorWithoutDefaultLimit(t *testing.T) {
	rc, err := extract.NewContext(http.MethodGet, "/", nil)
	require.NoError(t, err)

	_, err = Paginator{}.Extract(rc, extract.State{})
	var ic *resterr.ImproperlyConfiguredError
	assert.True(t, errors.As(err, &ic))
}

func TestWindowOffset(t *testing.T) {
	assert.Equal(t, uint64(0), Window{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, uint64(40), Window{Page: 5, Limit: 10}.Offset())
	assert.Equal(t, uint64(0), Window{Page: 0, Limit: 10}.Offset())
}

func TestPaginatorRejectsOverflowingOffset(t *testing.T) {
	for _, target := range []string{
		"/?page=1000000000000000000&limit=20",
		"/?page=" + strconv.FormatUint(1<<60+1, 10) + "&limit=16",
	} {
		rc, err := extract.NewContext(http.MethodGet, target, nil)
		require.NoError(t, err)

		_, err = New(20, Any()).Extract(rc, extract.State{})
		var iqp *resterr.InvalidQueryParameterError
		require.True(t, errors.As(err, &iqp), target)
		assert.Equal(t, "page", iqp.Name)
	}

	rc, err := extract.NewContext(http.MethodGet, "/?page=1000&limit=20", nil)
	require.NoError(t, err)
	w, err := New(20, Any()).Extract(rc, extract.State{})
	require.NoError(t, err)
	assert.Equal(t, uint64(19980), w.Offset())
}
