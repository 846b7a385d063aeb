// cmd/web/serve.go
//
// `web serve` – the HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load config, start the daily rotating logger, open the DB pool and
//     the optional GeoIP reader (boot.go).
//
//  2. Keep the Vault token alive when Vault is in use.
//
//  3. Install the OpenTelemetry tracer provider when enabled.
//
//  4. Build the chi router: request id → access log → security headers →
//     ForceHTTPS, then /metrics, /healthz, and every registered component.
//
//  5. Wrap the router with otelhttp and serve until SIGINT/SIGTERM.

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yanizio/adept-rest/internal/component"
	"github.com/yanizio/adept-rest/internal/middleware"
	"github.com/yanizio/adept-rest/internal/server"
	"github.com/yanizio/adept-rest/internal/telemetry"
)

const (
	dbConnectTimeout = 15 * time.Second
	shutdownGrace    = 20 * time.Second
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := boot(cmd, true)
			if err != nil {
				return err
			}
			defer a.shutdown()
			if addr != "" {
				a.cfg.HTTP.ListenAddr = addr
			}

			if a.vault != nil {
				go a.vault.Watch(ctx)
			}

			flush, err := startTelemetry(a)
			if err != nil {
				return err
			}
			defer func() {
				fctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = flush(fctx)
			}()

			r, err := router(a)
			if err != nil {
				return err
			}
			handler := otelhttp.NewHandler(r, "adept-rest")
			return server.Run(ctx, server.New(a.cfg.HTTP, handler), shutdownGrace)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.listen_addr)")
	return cmd
}

// router assembles middleware, infrastructure endpoints, and components.
func router(a *app) (chi.Router, error) {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.AccessLog(a.log.Desugar()),
		middleware.Security,
		middleware.ForceHTTPS(a.cfg.HTTP.ForceHTTPS),
	)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.state.DB.PingContext(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	env := component.Env{State: a.state, Paginator: a.pager}
	if err := component.Mount(r, env); err != nil {
		return nil, err
	}
	return r, nil
}

// startTelemetry installs the tracer provider, or a no-op when disabled.
func startTelemetry(a *app) (telemetry.Shutdown, error) {
	t := a.cfg.Telemetry
	if !t.Enabled {
		return telemetry.Noop, nil
	}
	opts := telemetry.Options{ServiceName: t.ServiceName}
	if t.Output != "" {
		out := t.Output
		if !filepath.IsAbs(out) {
			out = filepath.Join(a.cfg.Paths.Root, out)
		}
		f, err := os.OpenFile(out, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		a.close = append([]func() error{f.Close}, a.close...)
		opts.Writer = f
	}
	return telemetry.Init(opts)
}
