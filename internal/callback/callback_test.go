package callback

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/adept-rest/internal/chain"
	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/resterr"
)

type note struct {
	ID        string     `db:"id"`
	Ref       uuid.UUID  `db:"ref"`
	Title     string     `db:"title"`
	Owner     *string    `db:"owner"`
	Status    string     `db:"status"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt *time.Time `db:"updated_at"`
}

func reqCtx(t *testing.T, target string) *extract.Context {
	t.Helper()
	rc, err := extract.NewContext(http.MethodPost, target, nil)
	require.NoError(t, err)
	return rc
}

func TestChainRunsInOrder(t *testing.T) {
	rc := reqCtx(t, "/?owner=ana")
	cb := New[*note](
		NewUUID[*note]("id"),
		NewUUID[*note]("ref"),
		Assign[*note]("owner", extract.QueryValue("owner")),
		Assign[*note]("title", extract.QueryValue("missing")),
		Default[*note]("status", "draft"),
		Touch[*note]("created_at", "updated_at"),
	)

	n, err := cb.Apply(rc, extract.State{}, &note{Title: "keep"})
	require.NoError(t, err)

	_, err = uuid.Parse(n.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, n.Ref)
	require.NotNil(t, n.Owner)
	assert.Equal(t, "ana", *n.Owner)
	assert.Equal(t, "keep", n.Title)
	assert.Equal(t, "draft", n.Status)
	assert.False(t, n.CreatedAt.IsZero())
	require.NotNil(t, n.UpdatedAt)
	assert.Equal(t, n.CreatedAt, *n.UpdatedAt)
}

func TestNewUUIDKeepsExistingKey(t *testing.T) {
	n, err := New[*note](NewUUID[*note]("id")).Apply(reqCtx(t, "/"), extract.State{}, &note{ID: "fixed"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", n.ID)
}

func TestClearResetsChain(t *testing.T) {
	parent := New[*note](Default[*note]("status", "draft"))
	child := parent.Clone()
	child.Clear()
	child.Add(Default[*note]("status", "published"))

	n, err := child.Apply(reqCtx(t, "/"), extract.State{}, &note{})
	require.NoError(t, err)
	assert.Equal(t, "published", n.Status)

	n, err = parent.Apply(reqCtx(t, "/"), extract.State{}, &note{})
	require.NoError(t, err)
	assert.Equal(t, "draft", n.Status)
}

func TestMisconfiguredColumnIsHardError(t *testing.T) {
	cb := New[*note](
		Touch[*note]("nope"),
		Default[*note]("status", "never"),
	)
	n := &note{}
	_, err := cb.Apply(reqCtx(t, "/"), extract.State{}, n)

	var ic *resterr.ImproperlyConfiguredError
	require.True(t, errors.As(err, &ic))
	assert.Contains(t, ic.Detail, "nope")
	assert.Empty(t, n.Status)
}

func TestSetTypeMismatch(t *testing.T) {
	err := Set(&note{}, "title", 42)
	assert.Equal(t, http.StatusInternalServerError, resterr.Status(err))

	err = Set(note{}, "title", "x")
	assert.Error(t, err)
}

func TestSkippedCallbackLeavesModelUntouched(t *testing.T) {
	cb := New[*note](
		chain.Step0(func(n *note) (*note, error) {
			n.Status = "mutated"
			return n, resterr.ErrNoMatch
		}),
		Default[*note]("title", "kept"),
	)
	in := &note{}
	out, err := cb.Apply(reqCtx(t, "/"), extract.State{}, in)
	require.NoError(t, err)
	assert.Empty(t, out.Status)
	assert.Equal(t, "kept", out.Title)
	assert.Empty(t, in.Status)
}

func TestFailedCallbackLeavesNoPartialWrite(t *testing.T) {
	cb := New[*note](
		Default[*note]("status", "draft"),
		Touch[*note]("created_at", "nope"),
	)
	in := &note{}
	out, err := cb.Apply(reqCtx(t, "/"), extract.State{}, in)
	require.Error(t, err)
	assert.Same(t, in, out)
	assert.True(t, in.CreatedAt.IsZero())
	assert.Empty(t, in.Status)
}
