// internal/config/secrets.go
//
// `vault:` reference resolution.
//
// Context
// -------
// After the YAML and env layers are merged, every string leaf that starts
// with `vault:` is replaced by the secret it names:
//
//	database:
//	  password: "vault:secret/adept-rest#db_password"
//
// resolves key `db_password` of KV-v2 secret `adept-rest` on mount `secret`.
// Resolution goes through the SecretSource interface; production uses
// internal/vault, tests pass a map.

package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/adept-rest/internal/vault"
)

const (
	vaultPrefix  = "vault:"
	secretTTL    = 5 * time.Minute
	vaultTimeout = 10 * time.Second

	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 15 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

// SecretSource fetches one key of one secret.
type SecretSource interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

// parseRef splits "vault:secret/app#key" into path and key.
func parseRef(ref string) (path, key string, err error) {
	body := strings.TrimPrefix(ref, vaultPrefix)
	path, key, ok := strings.Cut(body, "#")
	if !ok || path == "" || key == "" {
		return "", "", fmt.Errorf("config: malformed vault reference %q (want vault:<path>#<key>)", ref)
	}
	return path, key, nil
}

// resolveSecrets rewrites every vault: leaf in k and returns how many were
// resolved.  src may be nil; a Vault client is then created on first use.
func resolveSecrets(k *koanf.Koanf, src SecretSource) (int, error) {
	var refs []string
	for key, val := range k.All() {
		if s, ok := val.(string); ok && strings.HasPrefix(s, vaultPrefix) {
			refs = append(refs, key)
		}
	}
	if len(refs) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), vaultTimeout)
	defer cancel()

	if src == nil {
		cli, err := vault.New(zap.S())
		if err != nil {
			return 0, fmt.Errorf("config: vault: %w", err)
		}
		src = cli
	}

	for _, key := range refs {
		path, field, err := parseRef(k.String(key))
		if err != nil {
			return 0, err
		}
		val, err := src.GetKV(ctx, path, field, secretTTL)
		if err != nil {
			return 0, fmt.Errorf("config: %s: %w", key, err)
		}
		if err := k.Set(key, val); err != nil {
			return 0, fmt.Errorf("config: %s: %w", key, err)
		}
	}
	return len(refs), nil
}
