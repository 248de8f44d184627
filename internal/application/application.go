package application

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/baranaytass/syncwatch-platform/internal/config"
	"github.com/baranaytass/syncwatch-platform/internal/database"
	"github.com/baranaytass/syncwatch-platform/internal/handler"
	"github.com/baranaytass/syncwatch-platform/internal/router"
	"github.com/baranaytass/syncwatch-platform/internal/service"
	"github.com/baranaytass/syncwatch-platform/internal/store"
)

// API is the HTTP + WebSocket API application.
type API struct {
	cfg *config.Config
	srv *http.Server
	db  *gorm.DB
	rdb *redis.Client
}

// NewAPI creates the API application: validates config, runs migrations,
// opens the database and redis, builds services and router.
func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	logger, _ := zap.NewProduction()
	if cfg.AppEnv == "development" {
		logger, _ = zap.NewDevelopment()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		// The cache is advisory; keep going on the durable store alone.
		logger.Warn("redis unreachable, session cache degraded", zap.Error(err))
	}

	cacheTTL := time.Duration(cfg.SessionCacheTTL) * time.Second
	sessionStore := store.NewCachedSessionStore(
		store.NewGormSessionStore(db),
		store.NewRedisSessionCache(rdb, cacheTTL, logger),
	)

	sessionSvc := service.NewSessionService(sessionStore, logger)
	syncEngine := service.NewSyncEngine(sessionSvc, logger)
	hub := service.NewRoomHub(sessionSvc, syncEngine,
		cfg.WSReadBufferSize, cfg.WSWriteBufferSize, cfg.WSMaxMessageSize, logger)

	sessionHandler := handler.NewSessionHandler(sessionSvc, cfg.WSBaseURL)
	sessionWS := handler.NewSessionWSHandler(hub, logger)
	health := handler.NewHealthHandler()

	r := router.New(sessionHandler, sessionWS, health)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{cfg: cfg, srv: srv, db: db, rdb: rdb}, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled; then shuts
// down gracefully.
func (a *API) Run(ctx context.Context) error {
	addr := a.srv.Addr
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	log.Printf("HTTP server listening on %s", addr)
	log.Printf("  Health:        %s/health", base)
	log.Printf("  Ready:         %s/ready", base)
	log.Printf("  Sessions:      %s/sessions", base)
	log.Printf("  WebSocket:     ws://%s:%s/ws/sessions", host, a.cfg.HTTPPort)

	go func() {
		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := a.rdb.Close(); err != nil {
		log.Printf("redis close: %v", err)
	}
	return nil
}
