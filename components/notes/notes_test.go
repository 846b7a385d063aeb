package notes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/adept-rest/internal/component"
	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/pagination"
)

const googlebot = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"

func newRouter(t *testing.T) (chi.Router, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })

	env := component.Env{
		State:     extract.State{DB: sqlx.NewDb(raw, "mysql")},
		Paginator: pagination.New(10, pagination.Choices(10, 25)),
	}
	c := &Comp{}
	require.NoError(t, c.Init(env))
	r := chi.NewRouter()
	r.Mount("/notes", c.Routes(env))
	return r, mock
}

func TestListSearchAndOrdering(t *testing.T) {
	r, mock := newRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM notes WHERE title LIKE ?")).
		WithArgs(`%50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM notes WHERE title LIKE ? ORDER BY title DESC, id LIMIT 25 OFFSET 0")).
		WithArgs(`%50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "uuid", "title", "body", "status", "created_at", "updated_at"}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notes?q=50%25&ordering=-title&limit=25", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRejectsUnknownOrdering(t *testing.T) {
	r, mock := newRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notes?ordering=body", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ordering")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFillsGeneratedColumns(t *testing.T) {
	r, mock := newRouter(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO notes (uuid, title, body, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)")).
		WithArgs(sqlmock.AnyArg(), "groceries", "", "draft", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(5, 1))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(`{"title":"groceries"}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var n Note
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))
	assert.EqualValues(t, 5, n.ID)
	assert.Len(t, n.UUID, 36)
	assert.Equal(t, "draft", n.Status)
	assert.False(t, n.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDetailServesCardToCrawlers(t *testing.T) {
	r, mock := newRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title FROM notes WHERE id = ? AND status = ? LIMIT 1 OFFSET 0")).
		WithArgs(int64(3), "published").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(3, "hello"))

	req := httptest.NewRequest(http.MethodGet, "/notes/3", nil)
	req.Header.Set("User-Agent", googlebot)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"id":3,"title":"hello"}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrationsAndRegistration(t *testing.T) {
	c := &Comp{}
	assert.Len(t, c.Migrations(), 2)

	var found bool
	for _, comp := range component.All() {
		found = found || comp.Name() == "notes"
	}
	assert.True(t, found)
}
