// Package database centralises sqlx connection helpers.  Three drivers are
// compiled in and selected by `database.driver`:
//
//	mysql   go-sql-driver/mysql (also MariaDB)
//	pgx     jackc/pgx/v5 through its database/sql shim
//	sqlite  modernc.org/sqlite (pure Go, no cgo)
//
// Public entry points:
//
//	Open(ctx, cfg)                 – open, tune the pool, run pragmas, Ping.
//	Migrate(ctx, db, owner, stmts) – apply a resource's DDL once.
//
// Open pings the database before returning so callers can fail fast during
// bootstrap.  Callers should Close() the returned *sqlx.DB when no longer
// needed.
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/yanizio/adept-rest/internal/config"
)

// Pool defaults used when the config leaves a field at zero.
const (
	DefaultMaxOpen     = 15
	DefaultMaxIdle     = 5
	DefaultMaxLifetime = 30 * time.Minute
)

// sqlitePragmas run on every new sqlite pool.
var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
}

// DSN expands the password into the DSN template when it holds "%s".
func DSN(cfg config.Database) string {
	if strings.Contains(cfg.DSN, "%s") {
		return fmt.Sprintf(cfg.DSN, cfg.Password)
	}
	return cfg.DSN
}

// Open returns a tuned, pinged *sqlx.DB for cfg.
func Open(ctx context.Context, cfg config.Database) (*sqlx.DB, error) {
	db, err := sqlx.Open(cfg.Driver, DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("database open %s: %w", cfg.Driver, err)
	}
	if err := configure(ctx, db, cfg); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// configure applies pool limits and dialect pragmas, then pings.
func configure(ctx context.Context, db *sqlx.DB, cfg config.Database) error {
	db.SetMaxOpenConns(orDefault(cfg.MaxOpen, DefaultMaxOpen))
	db.SetMaxIdleConns(orDefault(cfg.MaxIdle, DefaultMaxIdle))
	life := cfg.ConnMaxLifetime
	if life == 0 {
		life = DefaultMaxLifetime
	}
	db.SetConnMaxLifetime(life)

	if cfg.Driver == "sqlite" {
		for _, stmt := range sqlitePragmas {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("database pragma %q: %w", stmt, err)
			}
		}
	}

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	return nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
