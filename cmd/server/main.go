// Command server runs the gram panchayat citizen services portal.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apphandler "github.com/estdev3690/digital-e-gram-panchayat/internal/application/handler"
	appmetrics "github.com/estdev3690/digital-e-gram-panchayat/internal/application/metrics"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/application/sequence"
	appservice "github.com/estdev3690/digital-e-gram-panchayat/internal/application/service"
	appstore "github.com/estdev3690/digital-e-gram-panchayat/internal/application/store"
	cathandler "github.com/estdev3690/digital-e-gram-panchayat/internal/catalog/handler"
	catservice "github.com/estdev3690/digital-e-gram-panchayat/internal/catalog/service"
	catstore "github.com/estdev3690/digital-e-gram-panchayat/internal/catalog/store"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/document"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/document/blobstore"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/jwttoken"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/platform/config"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/platform/database"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/platform/httpserver"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/platform/logger"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/platform/middleware"
	platformredis "github.com/estdev3690/digital-e-gram-panchayat/internal/platform/redis"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/stats"
	userhandler "github.com/estdev3690/digital-e-gram-panchayat/internal/user/handler"
	userservice "github.com/estdev3690/digital-e-gram-panchayat/internal/user/service"
	userstore "github.com/estdev3690/digital-e-gram-panchayat/internal/user/store"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
)

const (
	tokenIssuer     = "digital-e-gram-panchayat"
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New(logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: Postgres, Redis, and MinIO when configured, in-memory
	// otherwise.
	var (
		db        *sql.DB
		apps      appservice.ApplicationStore
		appStats  stats.ApplicationStats
		seqs      sequence.Store
		users     userservice.Store
		userCount stats.Counter
		catalog   catservice.Store
		catCount  stats.Counter
		blobs     blobstore.BlobStore
	)

	if cfg.PostgresDSN != "" {
		var err error
		db, err = database.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()
		if err := applySchemas(ctx, db); err != nil {
			return err
		}

		pgApps := appstore.NewPostgres(db)
		apps, appStats = pgApps, pgApps
		seqs = sequence.NewPostgres(db)
		pgUsers := userstore.NewPostgresStore(db)
		users, userCount = pgUsers, pgUsers
		pgCatalog := catstore.NewPostgresStore(db)
		catalog, catCount = pgCatalog, pgCatalog
		log.Info("using postgres stores")
	} else {
		memApps := appstore.NewInMemory()
		apps, appStats = memApps, memApps
		seqs = sequence.NewInMemory()
		memUsers := userstore.NewInMemory()
		users, userCount = memUsers, memUsers
		memCatalog := catstore.NewInMemory()
		catalog, catCount = memCatalog, memCatalog
		log.Warn("postgres not configured, using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		seqs = sequence.NewRedis(redisClient.Client)
		log.Info("using redis sequence counter")
	}

	if cfg.Storage.Endpoint != "" {
		minioStore, err := blobstore.NewMinio(cfg.Storage)
		if err != nil {
			return fmt.Errorf("connect object storage: %w", err)
		}
		if err := minioStore.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("ensure storage bucket: %w", err)
		}
		blobs = minioStore
		log.Info("using minio document storage", "bucket", cfg.Storage.Bucket)
	} else {
		blobs = blobstore.NewInMemory()
		log.Warn("object storage not configured, using in-memory blob store")
	}

	// Services.
	tokens := jwttoken.NewService(cfg.JWTSigningKey, tokenIssuer)
	intake := document.NewIntake(blobs, cfg.UploadTimeout)
	catalogSvc := catservice.NewService(catalog, log)
	userSvc := userservice.NewService(users, tokens, cfg.TokenTTL, log)
	appSvc := appservice.NewService(apps, seqs, intake, catalogSvc, log, appmetrics.New())
	statsSvc := stats.NewService(appStats, userCount, catCount, log)

	// Handlers.
	appH := apphandler.NewHandler(appSvc, catalogSvc, applicantDirectory{userSvc}, log)
	catH := cathandler.NewHandler(catalogSvc, log)
	userH := userhandler.NewHandler(userSvc, log)
	statsH := stats.NewHandler(statsSvc)

	router := buildRouter(log, tokens, appH, catH, userH, statsH, db, redisClient)

	server := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func buildRouter(
	log *slog.Logger,
	tokens *jwttoken.Service,
	appH *apphandler.Handler,
	catH *cathandler.Handler,
	userH *userhandler.Handler,
	statsH *stats.Handler,
	db *sql.DB,
	redisClient *platformredis.Client,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", healthHandler(db, redisClient))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public.
		r.Group(func(r chi.Router) {
			r.Use(middleware.ContentTypeJSON)
			userH.PublicRoutes(r)
			catH.PublicRoutes(r)
		})

		// Authenticated.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(jwttoken.NewMiddlewareAdapter(tokens), log))
			appH.Routes(r)
			userH.ProfileRoutes(r)

			r.Route("/admin", func(r chi.Router) {
				userH.AdminRoutes(r)
				catH.AdminRoutes(r)
				statsH.Routes(r)
			})
		})
	})
	return r
}

func applySchemas(ctx context.Context, db *sql.DB) error {
	for _, schema := range []string{appstore.Schema, userstore.Schema, catstore.Schema} {
		if _, err := db.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func healthHandler(db *sql.DB, redisClient *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// applicantDirectory adapts the user service to the application handler's
// projection contract.
type applicantDirectory struct {
	users *userservice.Service
}

func (d applicantDirectory) Contact(ctx context.Context, id domain.UserID) (apphandler.ApplicantContact, error) {
	u, err := d.users.Lookup(ctx, id)
	if err != nil {
		return apphandler.ApplicantContact{}, err
	}
	return apphandler.ApplicantContact{Name: u.Name, Email: u.Email, Phone: u.Phone}, nil
}
