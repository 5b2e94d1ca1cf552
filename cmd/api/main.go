package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/0Calories/kotoba-plus/internal/application"
	applex "github.com/0Calories/kotoba-plus/internal/application/lexicon"
	"github.com/0Calories/kotoba-plus/internal/config"
	"github.com/0Calories/kotoba-plus/internal/domain/analyst"
	"github.com/0Calories/kotoba-plus/internal/infra/ai"
	mysqlp "github.com/0Calories/kotoba-plus/internal/infra/db/mysql"
	postgresp "github.com/0Calories/kotoba-plus/internal/infra/db/postgres"
	"github.com/0Calories/kotoba-plus/internal/infra/httpserver"
	minioStore "github.com/0Calories/kotoba-plus/internal/infra/storage"
	"github.com/0Calories/kotoba-plus/internal/logger"
	"github.com/0Calories/kotoba-plus/internal/middleware"
)

func main() {
	os.Exit(run())
}

func run() int {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		logger.Get().Error().Err(err).Str("path", path).Msg("config load error")
		return 1
	}

	log := logger.Init(logger.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "kotoba-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := ai.NewClient(cfg)
	if err != nil {
		log.Error().Err(err).Msg("ai client init error")
		return 1
	}

	// both stores are optional; a nil checker reports them as disabled
	history := middleware.Dependency{Name: "history"}
	archive := middleware.Dependency{Name: "archive"}
	opts := []applex.Option{applex.WithClock(application.SystemClock{})}

	// history is optional
	if cfg.History.Driver != "" {
		db, repo, err := openHistory(ctx, cfg)
		if err != nil {
			log.Error().Err(err).Str("driver", cfg.History.Driver).Msg("history init error")
			return 1
		}
		defer db.Close()
		history.Checker = middleware.PingChecker{DB: db}
		opts = append(opts, applex.WithHistory(repo))
	}

	// payload archive is optional
	if cfg.Minio.Endpoint != "" {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Error().Err(err).Msg("minio init error")
			return 1
		}
		archive.Checker = store
		opts = append(opts, applex.WithArchive(store))
	}

	svc := applex.NewService(client, opts...)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr: addr,
		Handler: httpserver.NewRouter(svc, httpserver.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Dependencies:   []middleware.Dependency{history, archive},
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Info().
		Str("addr", addr).
		Str("provider", client.Name()).
		Str("model", client.ModelName()).
		Bool("history", cfg.History.Driver != "").
		Bool("archive", cfg.Minio.Endpoint != "").
		Msg("server listening")
	if err := serve(ctx, srv, 10*time.Second); err != nil {
		log.Error().Err(err).Msg("server error")
		return 1
	}
	return 0
}

// serve runs srv until ctx is done, then shuts it down within grace.
// A listen failure is returned instead of exiting so deferred cleanup still runs.
func serve(ctx context.Context, srv *http.Server, grace time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Get().Info().Msg("shutting down server...")
	case err := <-serveErr:
		return err
	}

	ctx2, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return srv.Shutdown(ctx2)
}

// openHistory connects the configured database and applies the migrations
func openHistory(ctx context.Context, cfg *config.Config) (*sql.DB, analyst.Repository, error) {
	switch cfg.History.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("mysql connect: %w", err)
		}
		if err := mysqlp.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return db, mysqlp.NewAnalystRepository(db), nil
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		if err := postgresp.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return db, postgresp.NewAnalystRepository(db), nil
	default:
		return nil, nil, fmt.Errorf("unsupported history driver %q", cfg.History.Driver)
	}
}
