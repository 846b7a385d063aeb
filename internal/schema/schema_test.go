package schema

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type audit struct {
	CreatedAt time.Time  `db:"created_at" rest:"auto"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type widget struct {
	Code  string  `db:"code" rest:"pk,type=char"`
	Count int32   `db:"count"`
	Size  int64   `db:"size"`
	Body  []byte  `db:"body"`
	Price float64 `db:"price"`
	Skip  string  `db:"-"`
	audit
}

func (widget) TableName() string { return "widgets" }

type plain struct {
	ID   int64 `db:"id"`
	Name string
}

func TestOfReadsTags(t *testing.T) {
	e, err := Of[*widget]()
	require.NoError(t, err)

	assert.Equal(t, "widgets", e.Table)
	assert.Equal(t, "code", e.PrimaryKey)
	assert.Equal(t, []string{"code", "count", "size", "body", "price", "created_at", "deleted_at"}, e.ColumnNames())

	for name, want := range map[string]ColumnType{
		"code":       Char,
		"count":      Integer,
		"size":       BigInteger,
		"body":       Blob,
		"price":      Float,
		"created_at": Timestamp,
		"deleted_at": Timestamp,
	} {
		c, ok := e.Column(name)
		require.True(t, ok, name)
		assert.Equal(t, want, c.Type, name)
	}

	_, ok := e.Column("skip")
	assert.False(t, ok)

	var writable []string
	for _, c := range e.Writable() {
		writable = append(writable, c.Name)
	}
	assert.NotContains(t, writable, "created_at")
}

func TestOfDefaults(t *testing.T) {
	e, err := Of[plain]()
	require.NoError(t, err)
	assert.Equal(t, "plain", e.Table)
	assert.Equal(t, "id", e.PrimaryKey)

	c, ok := e.Column("name")
	require.True(t, ok)
	assert.Equal(t, String, c.Type)
}

func TestOfIsCachedAcrossGoroutines(t *testing.T) {
	var wg sync.WaitGroup
	got := make([]*Entity, 8)
	for i := range got {
		i := i // per-iteration copy (Go 1.22 loop semantics)
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = MustOf[plain]()
		}()
	}
	wg.Wait()
	for _, e := range got {
		assert.Same(t, got[0], e)
	}
}

func TestOfRejectsNonStruct(t *testing.T) {
	_, err := Of[int]()
	assert.Error(t, err)
}

func TestOfKeepsAnonymousModelsApart(t *testing.T) {
	type left = struct {
		A string `db:"a"`
	}
	type right = struct {
		B string `db:"b"`
	}
	assert.NotEqual(t,
		flightKey(reflect.TypeOf((*left)(nil)).Elem()),
		flightKey(reflect.TypeOf((*right)(nil)).Elem()))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			e, err := Of[left]()
			assert.NoError(t, err)
			assert.Equal(t, []string{"a"}, e.ColumnNames())
		}()
		go func() {
			defer wg.Done()
			e, err := Of[right]()
			assert.NoError(t, err)
			assert.Equal(t, []string{"b"}, e.ColumnNames())
		}()
	}
	wg.Wait()
}
