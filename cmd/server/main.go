package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	_ "github.com/teamtask/tasktracker/docs"
	"github.com/teamtask/tasktracker/internal/api"
	"github.com/teamtask/tasktracker/internal/api/handler"
	"github.com/teamtask/tasktracker/internal/api/metrics"
	"github.com/teamtask/tasktracker/internal/core/domain"
	"github.com/teamtask/tasktracker/internal/core/ports"
	"github.com/teamtask/tasktracker/internal/core/service"
	"github.com/teamtask/tasktracker/internal/infrastructure/config"
	mongodb "github.com/teamtask/tasktracker/internal/infrastructure/db/mongo"
	redisdb "github.com/teamtask/tasktracker/internal/infrastructure/db/redis"
	"github.com/teamtask/tasktracker/internal/infrastructure/queue"
	"github.com/teamtask/tasktracker/internal/infrastructure/scheduler"
	"github.com/teamtask/tasktracker/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title                       Task Tracker API
// @version                     1.0
// @description                 Multi-tenant task tracking: admins manage managers, managers run teams and tasks, employees report progress.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Bearer token from /auth/token, sent as "Bearer <token>".
func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log := logger.New(logger.Options{Service: "tasktracker"})
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "tasktracker",
	})

	// --- Storage ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- Core ---
	users := mongodb.NewUserRepository(db)
	tasks := mongodb.NewTaskRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)
	tx := mongodb.NewTransactor(client)

	credentials := service.NewCredentialStore(users, 0)
	tokens := service.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	registry := service.NewRevocationRegistry(
		mongodb.NewRevocationRepository(db),
		redisdb.NewRevocationCache(rdb),
		log.With().Str("component", "revocation").Logger(),
	)

	identities := service.NewIdentityService(users, tasks, tx, credentials, log.With().Str("component", "identity").Logger())
	// The serializer outlives the signal context so in-flight requests can
	// finish during graceful shutdown.
	serialCtx, stopSerial := context.WithCancel(context.Background())
	defer stopSerial()
	serial := queue.NewSerializer(cfg.TaskWorkers, log.With().Str("component", "queue").Logger())
	serial.Start(serialCtx)

	taskService := service.NewTaskService(tasks, users, auditRepo, tx, log.With().Str("component", "task").Logger()).
		WithSerializer(serial)

	if err := bootstrapAdmin(ctx, cfg.Bootstrap, identities, log); err != nil {
		return err
	}

	// --- Maintenance ---
	pruner := scheduler.NewRevocationPruner(registry, cfg.RevocationPruneSchedule, log, func(removed int64) {
		metrics.RevocationsPrunedTotal.Add(float64(removed))
	})
	if err := pruner.Start(ctx); err != nil {
		return err
	}

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Auth:       service.NewAuthService(credentials, tokens, registry, log.With().Str("component", "auth").Logger()),
		Gate:       service.NewGate(registry, tokens, users),
		Identities: identities,
		Tasks:      taskService,
		Audit:      service.NewAuditService(auditRepo),
		Cookie:     handler.CookieOptions{Name: cfg.Cookie.Name, Secure: cfg.Cookie.Secure},
		HealthChecks: []handler.DependencyCheck{
			handler.MongoCheck(db),
			handler.RedisCheck(rdb),
		},
		Logger: log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	pruner.Stop(shutdownCtx)
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server stopped cleanly")
	return nil
}

func bootstrapAdmin(ctx context.Context, cfg config.BootstrapConfig, identities ports.IdentityService, log zerolog.Logger) error {
	if !cfg.Enabled() {
		log.Warn().Msg("BOOTSTRAP_ADMIN_USERNAME not set, skipping admin bootstrap")
		return nil
	}

	admin, created, err := identities.Bootstrap(ctx, ports.CreateIdentityInput{
		Name:     cfg.Name,
		Username: cfg.Username,
		Email:    cfg.Email,
		Password: cfg.Password,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return err
	}
	if created {
		log.Info().Int64("user_id", admin.ID).Str("username", admin.Username).Msg("bootstrap admin created")
	}
	return nil
}
