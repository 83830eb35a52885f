// Gatehouse - Declarative ACL and Policy Chain Engine
// Copyright 2026 Gatehouse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatehouse/gatehouse

// Package main is the entry point for the Gatehouse server.
//
// Gatehouse protects HTTP routes with declarative policy chains. Each route
// carries a (controller, action) identity; a three-layer ACL document maps
// that identity to an ordered chain of named policies, and every request runs
// its chain before the handler may execute.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, config file, environment (Koanf v2)
//  2. Policy registry: builtins plus the stock policy set
//  3. ACL compilation: the declarative document is parsed and every policy
//     reference resolved against the registry - unknown names abort startup
//  4. HTTP server: Chi router with the guard middleware on application routes
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority
// wins):
//   - Environment variables (SERVER_PORT, JWT_SECRET, LOG_LEVEL, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// The ACL document lives under the `acl:` key:
//
//	acl:
//	  "*": true
//	  ProfileController:
//	    "*": false
//	    edit: isLoggedIn
//	  FileController:
//	    upload: [isAuthenticated, canWrite, hasEnoughSpace]
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting new connections and waits up to 10s for in-flight requests.
//
// # Example Usage
//
// Development, allow-everything ACL:
//
//	LOG_FORMAT=console ./gatehouse
//
// Production with JWT-backed policies:
//
//	export JWT_SECRET=$(openssl rand -base64 32)
//	export CONFIG_PATH=/etc/gatehouse/config.yaml
//	./gatehouse
//
// # Port 8137
//
// The default port 8137 is unassigned by IANA and easy to remember as
// "81 gate, 37 house".
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gatehouse/gatehouse/internal/acl"
	"github.com/gatehouse/gatehouse/internal/config"
	"github.com/gatehouse/gatehouse/internal/guard"
	"github.com/gatehouse/gatehouse/internal/logging"
	"github.com/gatehouse/gatehouse/internal/middleware"
	"github.com/gatehouse/gatehouse/internal/policies"
	"github.com/gatehouse/gatehouse/internal/policy"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting Gatehouse")

	reg := policy.NewRegistry()
	if err := policies.Register(reg, policies.Options{
		JWTSecret: []byte(cfg.Security.JWTSecret),
		Enforcer: &policies.EnforcerConfig{
			ModelPath:   cfg.Security.Casbin.ModelPath,
			PolicyPath:  cfg.Security.Casbin.PolicyPath,
			DefaultRole: cfg.Security.Casbin.DefaultRole,
		},
	}); err != nil {
		return fmt.Errorf("failed to register stock policies: %w", err)
	}

	// Parse and compile the ACL up front. A reference to a policy nobody
	// registered is a deployment mistake and must stop the process, not
	// surface per-request.
	aclCfg, err := acl.Parse(cfg.ACL)
	if err != nil {
		return fmt.Errorf("invalid acl document: %w", err)
	}
	table, err := acl.Compile(aclCfg, reg)
	if err != nil {
		return fmt.Errorf("failed to compile acl: %w", err)
	}
	logging.Info().
		Strs("controllers", aclCfg.Controllers()).
		Strs("policies", reg.Names()).
		Msg("ACL compiled")

	g := guard.New(table)
	router := buildRouter(cfg, g)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logging.Info().Msg("Server stopped gracefully")
	return nil
}

// buildRouter assembles the Chi router: operational endpoints unguarded,
// application routes behind the guard middleware.
func buildRouter(cfg *config.Config, g *guard.Guard) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if !cfg.Server.RateLimitDisabled {
		r.Use(httprate.LimitByIP(cfg.Server.RateLimitReqs, cfg.Server.RateLimitWindow))
	}

	// Operational endpoints stay outside the ACL: guarding liveness probes
	// behind policies is a foot-gun.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Convention routing: /{controller}/{action} derives the policy identity
	// from the URL, so the ACL alone decides what runs where.
	r.Route("/{controller}/{action}", func(r chi.Router) {
		r.Use(g.Middleware)
		r.HandleFunc("/", appHandler)
	})

	return r
}

// appHandler is the placeholder application handler behind the guard. A real
// deployment mounts its own handlers here; this one just echoes the identity
// the guard resolved.
func appHandler(w http.ResponseWriter, r *http.Request) {
	controller := chi.URLParam(r, "controller")
	action := chi.URLParam(r, "action")
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"controller":%q,"action":%q,"request_id":%q}`,
		controller, action, logging.RequestIDFromContext(r.Context()))
}
