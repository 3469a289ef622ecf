package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"rhmaster/internal/domain/auth"
	"rhmaster/internal/domain/payroll"
	"rhmaster/internal/platform/config"
	"rhmaster/internal/platform/crypto"
	"rhmaster/internal/platform/db"
	"rhmaster/internal/platform/jobs"
	"rhmaster/internal/platform/logging"
	"rhmaster/internal/platform/metrics"
	"rhmaster/internal/store"
	authhandler "rhmaster/internal/transport/http/handlers/auth"
	corehandler "rhmaster/internal/transport/http/handlers/core"
	payrollhandler "rhmaster/internal/transport/http/handlers/payroll"
	synchandler "rhmaster/internal/transport/http/handlers/sync"
	"rhmaster/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	Pool    *pgxpool.Pool
	Store   *store.Store
	Metrics *metrics.Collector
	Jobs    *jobs.Service
	Logger  *zap.Logger
	Router  http.Handler

	hasRemote bool
}

// Options overrides the pieces New would otherwise build from Config.
type Options struct {
	Logger *zap.Logger
	Remote store.Remote
	Local  store.Mirror
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	absence, _ := payroll.ParseAbsencePolicy(cfg.AbsencePolicy)
	orphans, _ := payroll.ParseOrphanPolicy(cfg.OrphanRecordPolicy)

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{Config: cfg, Metrics: metrics.New(), Logger: logger}

	remote := opts.Remote
	if remote == nil && cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		app.Pool = pool
		remote = store.NewPgRemote(pool)
		if cfg.RunMigrations {
			migrateCtx, cancel := context.WithTimeout(ctx, cfg.RemotePingTimeout)
			applied, err := db.Migrate(migrateCtx, pool)
			if err != nil {
				logger.Warn("migrations skipped, remote unavailable", zap.Error(err))
			} else if len(applied) > 0 {
				logger.Info("migrations applied", zap.Strings("versions", applied))
			}
			cancel()
		}
	}

	app.hasRemote = remote != nil

	local := opts.Local
	if local == nil {
		sealer, err := crypto.New(cfg.LocalSnapshotKey)
		if err != nil {
			app.Close()
			return nil, err
		}
		local = store.NewFileMirror(cfg.LocalSnapshotPath, sealer)
	}
	app.Store = store.Open(ctx, store.Options{
		Remote:      remote,
		Local:       local,
		Logger:      logger.Named("store"),
		Metrics:     app.Metrics,
		PingTimeout: cfg.RemotePingTimeout,
	})
	logger.Info("store opened", zap.Stringer("mode", app.Store.Mode()))

	app.Jobs = jobs.New(logger.Named("jobs"))
	app.Router = app.routes(payroll.NewCalculator(absence), orphans)
	return app, nil
}

// StartBackground runs the job worker. With a remote and a non-zero
// SyncInterval it also retries the remote on that interval while the
// store is offline; by default only Reload returns the store online.
func (a *App) StartBackground(ctx context.Context) {
	a.Jobs.Start(ctx)
	if !a.hasRemote {
		return
	}
	a.Jobs.Every(ctx, "store_resync", a.Config.SyncInterval, a.resync)
}

func (a *App) resync(ctx context.Context) error {
	if a.Store.Mode() == store.ModeOnline {
		return nil
	}
	mode, err := a.Store.Reload(ctx)
	if err != nil {
		return err
	}
	a.Logger.Info("remote store reachable again", zap.Stringer("mode", mode))
	return nil
}

func (a *App) routes(calc payroll.Calculator, orphans payroll.OrphanPolicy) http.Handler {
	cfg := a.Config
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(a.Logger.Named("http"), a.Metrics))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(auth.Operator{
			Email:        cfg.OperatorEmail,
			PasswordHash: cfg.OperatorPasswordHash,
		}, cfg.JWTSecret, cfg.TokenTTL, cfg.AuthEnabled())
		r.With(middleware.LoginRateLimit(10, time.Minute)).Post("/auth/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireOperator(cfg.JWTSecret, cfg.AuthEnabled()))
			r.Get("/auth/me", authHandler.HandleMe)

			corehandler.NewHandler(a.Store).RegisterRoutes(r)
			replays := middleware.NewIdempotencyStore(24 * time.Hour)
			payrollhandler.NewHandler(a.Store, calc, orphans, replays).RegisterRoutes(r)
			synchandler.NewHandler(a.Store, a.Metrics).RegisterRoutes(r)
		})
	})
	return router
}

func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM.
func Run() error {
	cfg := config.Load()
	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg, Options{Logger: logger})
	if err != nil {
		return err
	}
	defer app.Close()
	app.StartBackground(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("RH Master server listening", zap.String("addr", cfg.Addr), zap.Bool("demo", !cfg.AuthEnabled()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
