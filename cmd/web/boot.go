// cmd/web/boot.go
//
// Shared bootstrap for every sub-command.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/oschwald/geoip2-golang"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yanizio/adept-rest/internal/config"
	"github.com/yanizio/adept-rest/internal/database"
	"github.com/yanizio/adept-rest/internal/extract"
	"github.com/yanizio/adept-rest/internal/logger"
	"github.com/yanizio/adept-rest/internal/pagination"
	"github.com/yanizio/adept-rest/internal/vault"
)

// app bundles what the commands share.
type app struct {
	cfg   *config.Config
	log   *zap.SugaredLogger
	state extract.State
	pager pagination.Paginator
	vault *vault.Client
	close []func() error
}

// loadConfig honours --root and pre-builds a Vault client when VAULT_ADDR
// is set so `serve` can keep its token alive.
func loadConfig(cmd *cobra.Command) (*config.Config, *vault.Client, error) {
	if root, _ := cmd.Flags().GetString("root"); root != "" {
		os.Setenv("ADEPT_ROOT", root)
	}

	var (
		cli *vault.Client
		src config.SecretSource
	)
	if os.Getenv("VAULT_ADDR") != "" {
		c, err := vault.New(zap.S())
		if err != nil {
			return nil, nil, err
		}
		cli, src = c, c
	}

	cfg, err := config.LoadFrom(config.Root(), src)
	return cfg, cli, err
}

// boot loads config, starts the logger, and opens the DB.  withGeo opens
// the optional GeoIP database too.
func boot(cmd *cobra.Command, withGeo bool) (*app, error) {
	cfg, cli, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Paths.Root, config.Log{Level: cfg.Log.Level, Tee: cfg.Log.Tee || runningInTTY()})
	if err != nil {
		return nil, fmt.Errorf("start logger: %w", err)
	}

	c, err := pagination.ParseConstraint(cfg.Pagination.Policy, cfg.Pagination.Choices, cfg.Pagination.Static)
	if err != nil {
		return nil, fmt.Errorf("pagination: %w", err)
	}
	pager := pagination.New(pagination.Limit(cfg.Pagination.DefaultLimit), c).WithPrefix(cfg.Pagination.Prefix)

	ctx, cancel := context.WithTimeout(cmd.Context(), dbConnectTimeout)
	defer cancel()
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	log.Infow("database online", "driver", cfg.Database.Driver)

	a := &app{
		cfg:   cfg,
		log:   log,
		pager: pager,
		vault: cli,
		state: extract.State{DB: db, Logger: log.Desugar()},
		close: []func() error{db.Close, log.Sync},
	}

	if withGeo && cfg.GeoIP.CountryDB != "" {
		geo, err := geoip2.Open(cfg.GeoIP.CountryDB)
		if err != nil {
			a.shutdown()
			return nil, fmt.Errorf("geoip: %w", err)
		}
		a.state.Geo = geo
		a.close = append([]func() error{geo.Close}, a.close...)
		log.Infow("geoip online", "db", cfg.GeoIP.CountryDB)
	}
	return a, nil
}

// shutdown releases resources in reverse acquisition order.
func (a *app) shutdown() {
	for _, fn := range a.close {
		_ = fn()
	}
}
