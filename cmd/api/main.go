// Command api serves the UniHome auth/session API.
//
//	@title			UniHome API
//	@version		1.0
//	@description	Authentication and session boundary of the UniHome student-housing site.
//	@BasePath		/
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/unihome/unihome-api/internal/api"
	"github.com/unihome/unihome-api/internal/api/handler"
	"github.com/unihome/unihome-api/internal/core/domain"
	"github.com/unihome/unihome-api/internal/core/ports"
	"github.com/unihome/unihome-api/internal/core/service"
	mongodb "github.com/unihome/unihome-api/internal/infrastructure/db/mongo"
	redisdb "github.com/unihome/unihome-api/internal/infrastructure/db/redis"
	"github.com/unihome/unihome-api/internal/infrastructure/directory"
	"github.com/unihome/unihome-api/internal/infrastructure/queue"
	"github.com/unihome/unihome-api/internal/infrastructure/session"
	"github.com/unihome/unihome-api/internal/pkg/config"
	"github.com/unihome/unihome-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.New(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "unihome-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	readiness := map[string]handler.Pinger{}

	// --- MongoDB (directory + audit trail) ---
	var mongoConn *mongodb.Connection
	if cfg.UsesMongo() {
		conn, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		mongoConn = conn
		readiness["mongodb"] = conn
		defer closeMongo(conn, log)
	}

	// --- Redis (session backend) ---
	var sessions ports.SessionStore
	cookieOpts := session.DefaultCookieOptions(cfg.IsProduction())
	if cfg.UsesRedis() {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Warn().Err(err).Msg("redis close failed")
			}
		}()
		readiness["redis"] = redisdb.Pinger{Client: rdb}
		sessions = session.NewRedisStore(rdb, cookieOpts)
	} else {
		sessions = session.NewCookieStore(cfg.Session.Secret, cookieOpts)
	}

	// --- Identity directory ---
	dir, err := buildDirectory(ctx, cfg, mongoConn, log)
	if err != nil {
		return err
	}

	// --- Audit trail ---
	var recorder ports.AuditRecorder = queue.NewLogRecorder(log)
	if mongoConn != nil {
		recorder = mongodb.NewAuditRepository(mongoConn.DB)
	}
	audit := queue.NewAuditDispatcher(cfg.Audit.Workers, recorder, log)
	audit.Start()
	defer audit.Close()

	e := api.NewRouter(api.Dependencies{
		Auth:      service.NewAuthService(dir, audit, log),
		Sessions:  sessions,
		Rules:     domain.DefaultRouteRules(),
		Readiness: readiness,
		Log:       log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("session_backend", cfg.Session.Backend).
			Str("directory_backend", cfg.Directory.Backend).
			Msg("starting API server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func buildDirectory(ctx context.Context, cfg *config.Config, conn *mongodb.Connection, log zerolog.Logger) (ports.IdentityDirectory, error) {
	if conn == nil {
		mem, err := directory.NewMemory(directory.DemoAccounts(), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		log.Info().Int("identities", mem.Len()).Msg("using in-memory identity directory")
		return mem, nil
	}

	repo := mongodb.NewIdentityRepository(conn.DB)
	if err := repo.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	if cfg.Directory.Seed {
		if _, err := directory.Seed(ctx, repo, directory.DemoAccounts(), bcrypt.DefaultCost, log); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

func closeMongo(conn *mongodb.Connection, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := conn.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("mongo close failed")
	}
}
