// cmd/web/main.go
//
// Chart host – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load config (.env → conf/global.yaml → CHARTS_* env).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Resolve the chart-host API key, through Vault when it is a
//     vault: reference.
//
//  4. Open the publish ledger when database.ledger_dsn is set.
//
//  5. Build the publish cache (memo → ledger → chart host), session
//     manager, and runner.
//
//  6. Mount routes:
//
//     • /metrics                     – Prometheus
//     • /api/apps/…                  – app cycles and selection events
//
//  7. Wrap with security headers and HTTPS enforcement, serve until
//     SIGINT / SIGTERM, then drain for up to 10 s.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/adept-charts/internal/api"
	"github.com/yanizio/adept-charts/internal/cache"
	"github.com/yanizio/adept-charts/internal/chart"
	"github.com/yanizio/adept-charts/internal/config"
	"github.com/yanizio/adept-charts/internal/database"
	"github.com/yanizio/adept-charts/internal/logger"
	"github.com/yanizio/adept-charts/internal/middleware"
	"github.com/yanizio/adept-charts/internal/publish"
	"github.com/yanizio/adept-charts/internal/runner"
	"github.com/yanizio/adept-charts/internal/server"
	"github.com/yanizio/adept-charts/internal/session"
	"github.com/yanizio/adept-charts/internal/vault"

	"github.com/yanizio/adept-charts/modules/debug"

	_ "github.com/yanizio/adept-charts/components/demo" // demo app
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logOut, err := logger.New(cfg.Paths.Root, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 1.  Publish stack (optional) ────────────────────────────────────
	//
	var publisher chart.Publisher
	var frameHosts []string
	if cfg.Publish.Endpoint != "" {
		pc, db, err := buildPublisher(ctx, cfg, logOut)
		if err != nil {
			logOut.Fatalw("publish stack", "err", err)
		}
		if db != nil {
			defer db.Close()
		}
		publisher = pc
		if u, err := url.Parse(cfg.Publish.Endpoint); err == nil {
			frameHosts = append(frameHosts, u.Scheme+"://"+u.Host)
		}
	} else {
		logOut.Infow("publish endpoint not set, hosted sharing modes disabled")
	}

	//
	// ── 2.  Sessions and runner ─────────────────────────────────────────
	//
	sessions := session.NewManager(cfg.Session.IdleTTL)
	defer sessions.Close()

	h := &api.Handler{
		Sessions: sessions,
		Runner:   &runner.Runner{Publisher: publisher},
		CSRF:     session.NewCSRF(cfg.Session.CSRFKey),
	}

	//
	// ── 3.  Routes ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS))
	r.Use(middleware.Security(frameHosts...))
	r.Use(requestLogger(logOut))
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/api/apps", h.Routes())
	r.Handle("/debug", debug.LocalOnly(debug.Handler(sessions)))

	srv := server.New(cfg.HTTP.ListenAddr, r, cfg.Publish.Timeout)
	go func() {
		logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logOut.Fatalw("http server", "err", err)
		}
	}()

	<-ctx.Done()
	logOut.Infow("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logOut.Warnw("shutdown", "err", err)
	}
}

// buildPublisher wires client → ledger → cache.  The returned DB is nil
// when no ledger is configured.
func buildPublisher(ctx context.Context, cfg *config.Config, logOut *zap.SugaredLogger) (*publish.Cache, *sqlx.DB, error) {
	apiKey := cfg.Publish.APIKey
	if vault.IsRef(apiKey) {
		vc, err := vault.New(ctx, logOut.Named("vault"))
		if err != nil {
			return nil, nil, err
		}
		if apiKey, err = vc.Resolve(ctx, apiKey); err != nil {
			return nil, nil, err
		}
	}

	client, err := publish.NewClient(publish.ClientConfig{
		Endpoint: cfg.Publish.Endpoint,
		Username: cfg.Publish.Username,
		APIKey:   apiKey,
		Timeout:  cfg.Publish.Timeout,
		Retries:  cfg.Publish.Retries,
		Logger:   logOut.Named("publish"),
	})
	if err != nil {
		return nil, nil, err
	}

	var (
		ledger publish.Ledger
		db     *sqlx.DB
	)
	if dsn := cfg.Database.LedgerDSN; dsn != "" {
		logOut.Infow("connecting to publish ledger …")
		db, err = database.Open(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		sl := publish.NewSQLLedger(db)
		if err := sl.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		ledger = sl
		logOut.Infow("publish ledger online")
	}

	return publish.NewCache(client, cache.NewMemo(cfg.Cache.MaxEntries), ledger), db, nil
}

// requestLogger attaches a request-scoped logger carrying the request id.
func requestLogger(base *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := base.With("request_id", chimw.GetReqID(r.Context()))
			next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), l)))
		})
	}
}
