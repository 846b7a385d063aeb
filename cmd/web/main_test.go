package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yanizio/adept-rest/internal/config"
	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/pagination"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "routes"}, names)
	assert.NotNil(t, root.PersistentFlags().Lookup("root"))
}

func TestRouterMountsComponentsAndHealth(t *testing.T) {
	raw, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer raw.Close()

	a := &app{
		cfg:   &config.Config{},
		log:   zap.NewNop().Sugar(),
		pager: pagination.New(20, pagination.Default()),
		state: extract.State{DB: sqlx.NewDb(raw, "mysql"), Logger: zap.NewNop()},
	}
	r, err := router(a)
	require.NoError(t, err)

	routes := map[string]bool{}
	require.NoError(t, chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes[method+" "+route] = true
		return nil
	}))
	assert.True(t, routes["GET /notes/"])
	assert.True(t, routes["GET /notes/{pk}"])
	assert.True(t, routes["GET /metrics"])

	mock.ExpectPing()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}
