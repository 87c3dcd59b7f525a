// talentbridge-portal-service
//
// Role-based authorization and data-scoping layer for the multi-tenant
// recruitment portal. Serves:
//   - /api/auth       — session issuance (signed cookie)
//   - /api/...        — portal API, ownership-scoped per role
//   - /api/open/...   — external integration gateway (X-API-Key)
//   - /api/stats/...  — role-scoped dashboards
//
// Route guard runs on every request; portal prefixes additionally enforce a
// fine-grained role match. Publishes EVENT_APPLICATION_STATUS to Redis on
// every status transition.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"talentbridge/portal-service/internal/config"
	"talentbridge/portal-service/internal/db"
	"talentbridge/portal-service/internal/guard"
	"talentbridge/portal-service/internal/identity"
	"talentbridge/portal-service/internal/openapi"
	"talentbridge/portal-service/internal/portal"
	"talentbridge/portal-service/internal/stats"
)

const version = "1.0.0"

// openGatewayRPM bounds each external caller's request rate.
const openGatewayRPM = 120

func main() {
	_ = godotenv.Load()

	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[portal-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[portal-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[portal-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[portal-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[portal-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[portal-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[portal-service] Redis connected ✓")

	// ── Storage ──────────────────────────────────────────────────────────────
	store := portal.NewStore(pool, rdb)
	if err := portal.Bootstrap(ctx, pool); err != nil {
		log.Fatalf("[portal-service] Schema bootstrap: %v", err)
	}

	issuer := identity.NewIssuer(store, cfg.SessionSecret, cfg.SessionTTL)

	// ── Stats engine + refresh scheduler ─────────────────────────────────────
	engine := stats.NewEngine(pool, rdb)
	scheduler := stats.NewScheduler(engine, cfg.StatsRefreshMinutes)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("[portal-service] Scheduler: %v", err)
	}
	defer scheduler.Stop()

	// ── Router ───────────────────────────────────────────────────────────────
	r := mux.NewRouter()
	r.Use(guard.Logging)

	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// External gateway: key-authenticated, rate-limited, no session state.
	open := r.PathPrefix("/api/open").Subrouter()
	open.Use(openapi.RequireAPIKey(cfg.OpenAPIKey, cfg.IsProduction()))
	open.Use(openapi.RateLimit(openGatewayRPM))
	openapi.NewHandler(store).Register(open)

	// Everything else runs behind the route guard.
	guarded := r.PathPrefix("/").Subrouter()
	guarded.Use(guard.Middleware(issuer))

	portal.NewHandler(store, issuer, cfg.SessionTTL, cfg.IsProduction()).Register(guarded)
	stats.NewHandler(engine).Register(guarded)

	// Portal page prefixes enforce the fine-grained role match.
	for _, portalArea := range []struct {
		prefix string
		role   identity.Role
	}{
		{"/enterprise", identity.RoleEnterprise},
		{"/government", identity.RoleGovernment},
		{"/school", identity.RoleSchool},
		{"/admin", identity.RoleAdmin},
	} {
		verify := guard.RequirePortalRole(portalArea.role)
		guarded.PathPrefix(portalArea.prefix).Handler(verify(http.HandlerFunc(portalPageHandler)))
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[portal-service] v%s listening on :%s (env: %s)", version, cfg.Port, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[portal-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[portal-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[portal-service] Shutdown error: %v", err)
	}
	log.Println("[portal-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "portal-service",
		"version": version,
	})
}

// portalPageHandler acknowledges access to a portal area. Page rendering
// lives in the frontend; the service only decides whether the caller may be
// here.
func portalPageHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"area": r.URL.Path, "access": "granted"})
}
