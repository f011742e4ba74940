// Package app wires the configuration, storage backend, use cases and HTTP
// server together and runs them until the context is canceled.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/vadimbarashkov/online-tools/internal/adapter/repository/memory"
	"github.com/vadimbarashkov/online-tools/internal/adapter/repository/sqldb"
	"github.com/vadimbarashkov/online-tools/internal/config"
	"github.com/vadimbarashkov/online-tools/internal/usecase"
	"github.com/vadimbarashkov/online-tools/migrations"
	"github.com/vadimbarashkov/online-tools/pkg/logger"
	"github.com/vadimbarashkov/online-tools/pkg/migrator"
	"github.com/vadimbarashkov/online-tools/pkg/postgres"
	"github.com/vadimbarashkov/online-tools/pkg/shortcode"
	"github.com/vadimbarashkov/online-tools/pkg/sqlite"
	"golang.org/x/sync/errgroup"

	delivery "github.com/vadimbarashkov/online-tools/internal/adapter/delivery/http"
	redisrepo "github.com/vadimbarashkov/online-tools/internal/adapter/repository/redis"
)

const serviceName = "online-tools"

type storage interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	log, err := logger.New(serviceName, logger.Options{
		Level:      cfg.Log.Level,
		JSON:       cfg.Env != config.EnvDev,
		OutputPath: cfg.Log.OutputPath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return fmt.Errorf("%s: failed to initialize logger: %w", op, err)
	}

	store, closeStore, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to open storage: %w", op, err)
	}

	log.Info("storage opened", slog.String("driver", cfg.Storage.Driver))

	generator, err := shortcode.New(shortcode.DefaultLength)
	if err != nil {
		closeStore()
		return fmt.Errorf("%s: failed to create short code generator: %w", op, err)
	}

	historyUseCase := usecase.NewHistoryUseCase(
		store,
		generator,
		log.Logger,
		usecase.WithStorageKey(cfg.History.StorageKey),
		usecase.WithHistoryLimit(cfg.History.Limit),
		usecase.WithMaxAttempts(cfg.History.MaxAttempts),
	)

	router := delivery.NewRouter(log, historyUseCase, delivery.RouterConfig{
		ShortURLBase:     cfg.ShortURL.BaseURL,
		ShortURLPrefix:   cfg.ShortURL.Prefix,
		SecureCookies:    cfg.Env == config.EnvProd,
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowCredentials: cfg.CORS.AllowCredentials,
		RateLimiter:      delivery.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	})

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        router,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting server", slog.String("addr", server.Addr), slog.String("env", cfg.Env))

		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		log.Info("shutting down server")

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		if err := closeStore(); err != nil {
			return fmt.Errorf("%s: failed to close storage: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}

// openStorage connects the backend selected by cfg.Storage.Driver. SQL
// backends are migrated before use.
func openStorage(ctx context.Context, cfg *config.Config) (storage, func() error, error) {
	const op = "app.openStorage"

	switch cfg.Storage.Driver {
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("%s: failed to connect to redis: %w", op, err)
		}

		return redisrepo.NewStorage(client), client.Close, nil

	case config.StoragePostgres:
		dsn := cfg.Postgres.DSN()

		if err := migrator.Up(migrations.FS, dsn); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}

		db, err := postgres.New(
			ctx,
			dsn,
			postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
			postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
			postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
			postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}

		return sqldb.NewStorage(db), db.Close, nil

	case config.StorageSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("%s: failed to create database directory: %w", op, err)
		}

		if err := migrator.Up(migrations.FS, sqlite.URL(cfg.SQLite.Path)); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}

		db, err := sqlite.New(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}

		return sqldb.NewStorage(db), db.Close, nil

	default:
		return memory.NewStorage(), func() error { return nil }, nil
	}
}
