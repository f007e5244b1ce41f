package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"riskreward.app/web/common/id"
	"riskreward.app/web/common/logger"
	"riskreward.app/web/common/otel"
	"riskreward.app/web/core/config"
	"riskreward.app/web/core/db"
	"riskreward.app/web/internal/http/middleware"
	httprouter "riskreward.app/web/internal/http/router"
	"riskreward.app/web/internal/http/view"
	"riskreward.app/web/internal/service"
	"riskreward.app/web/internal/store"
	"riskreward.app/web/internal/trello"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "riskreward starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	sessions, closeSessions, err := openSessionStore(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to open session store", "error", err, "store", cfg.Session.Store)
		os.Exit(1)
	}
	defer closeSessions()
	slog.InfoContext(ctx, "session store ready", "store", cfg.Session.Store)

	connector := trello.NewConnector(trello.ConnectorConfig{
		APIKey:      cfg.Trello.APIKey,
		OAuthSecret: cfg.Trello.OAuthSecret,
		APIURL:      cfg.Trello.APIURL,
		AuthURL:     cfg.Trello.AuthURL,
		AppName:     cfg.Trello.AppName,
		Timeout:     cfg.Trello.Timeout,
	})

	services := service.NewServices(sessions, connector, connector, service.ServicesConfig{
		SessionTTL: cfg.Session.TTL,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := setupRouter(cfg, services)
	if err != nil {
		slog.ErrorContext(ctx, "failed to set up router", "error", err)
		os.Exit(1)
	}
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

// openSessionStore connects the configured session backend. The returned
// func releases it.
func openSessionStore(ctx context.Context, cfg config.Config) (store.SessionStore, func(), error) {
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing redis url: %w", err)
		}
		redisClient := redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		sessions := store.NewRedisSessionStore(redisClient, cfg.Redis.KeyPrefix)
		return sessions, func() { _ = sessions.Close() }, nil

	case config.SessionStorePostgres:
		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		removed, err := store.DeleteExpiredSessions(ctx, database.Pool())
		if err != nil {
			slog.WarnContext(ctx, "failed to prune expired sessions", "error", err)
		} else if removed > 0 {
			slog.InfoContext(ctx, "pruned expired sessions", "count", removed)
		}
		return store.NewPostgresSessionStore(database.Pool()), database.Close, nil

	default:
		sessions := store.NewMemorySessionStore()
		return sessions, func() { _ = sessions.Close() }, nil
	}
}

func setupRouter(cfg config.Config, services *service.Services) (*gin.Engine, error) {
	router := gin.New()

	tmpl, err := view.Load()
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		Session: middleware.SessionConfig{
			TTL:          cfg.Session.TTL,
			IsProduction: cfg.IsProduction(),
			BaseURL:      cfg.BaseURL,
		},
	})

	return router, nil
}

const banner = `
┬─┐┬┌─┐┬┌─   ┬─┐┌─┐┬ ┬┌─┐┬─┐┌┬┐
├┬┘│└─┐├┴┐───├┬┘├┤ │││├─┤├┬┘ ││
┴└─┴└─┘┴ ┴   ┴└─└─┘└┴┘┴ ┴┴└──┴┘
`
