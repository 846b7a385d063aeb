package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSecrets map[string]string

func (m mapSecrets) GetKV(_ context.Context, path, key string, _ time.Duration) (string, error) {
	v, ok := m[path+"#"+key]
	if !ok {
		return "", fmt.Errorf("no secret %s#%s", path, key)
	}
	return v, nil
}

const baseYAML = `
http:
  listen_addr: "127.0.0.1:8080"
database:
  driver: mysql
  dsn: "app:%s@tcp(db:3306)/app"
  password: "vault:secret/adept-rest#db_password"
pagination:
  default_limit: 20
  policy: choices
  choices: [10, 20, 50]
`

func writeRoot(t *testing.T, yml string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "conf"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(yml), 0o644))
	return root
}

func TestLoadFromMergesLayers(t *testing.T) {
	root := writeRoot(t, baseYAML)
	t.Setenv("ADEPT_HTTP__FORCE_HTTPS", "true")
	t.Setenv("ADEPT_LOG__LEVEL", "debug")

	cfg, err := LoadFrom(root, mapSecrets{"secret/adept-rest#db_password": "hunter2"})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.HTTP.ListenAddr)
	assert.True(t, cfg.HTTP.ForceHTTPS)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "hunter2", cfg.Database.Password)
	assert.Equal(t, []uint64{10, 20, 50}, cfg.Pagination.Choices)
	assert.Equal(t, 15*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, root, cfg.Paths.Root)
	assert.Same(t, cfg, Get())
}

func TestLoadFromFailsValidation(t *testing.T) {
	root := writeRoot(t, `
http:
  listen_addr: "not-an-address"
database:
  driver: oracle
  dsn: x
pagination:
  default_limit: 0
`)
	_, err := LoadFrom(root, mapSecrets{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validate")
}

func TestLoadFromSecretErrors(t *testing.T) {
	root := writeRoot(t, baseYAML)
	_, err := LoadFrom(root, mapSecrets{})
	assert.ErrorContains(t, err, "database.password")
}

func TestParseRef(t *testing.T) {
	p, k, err := parseRef("vault:secret/app#token")
	require.NoError(t, err)
	assert.Equal(t, "secret/app", p)
	assert.Equal(t, "token", k)

	_, _, err = parseRef("vault:secret/app")
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "http.listen_addr", envKey("ADEPT_HTTP__LISTEN_ADDR"))
	assert.Equal(t, "pagination.default_limit", envKey("ADEPT_PAGINATION__DEFAULT_LIMIT"))
}
