package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"duel/internal/config"
	"duel/internal/events"
	"duel/internal/jobs"
	matchManager "duel/internal/match_management"
	"duel/internal/metrics"
	"duel/internal/registry"
	"duel/internal/routers"
	"duel/internal/signaling"
	"duel/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func registerRoutes(router *chi.Mux, mm *matchManager.MatchManager) {
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("ok")) })
	router.Handle("/metrics", metrics.Handler())
	routers.MatchRoutes(router, mm)
}

// connectRedis returns nil when no address is configured or the server is
// unreachable; match events are then dropped.
func connectRedis(addr string, logger *zap.Logger) *redis.Client {
	if addr == "" {
		logger.Info("REDIS_ADDR not set, match events disabled")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to redis, match events disabled", zap.String("addr", addr), zap.Error(err))
		rdb.Close()
		return nil
	}
	logger.Info("Connected to redis", zap.String("addr", addr))
	return rdb
}

func main() {
	logger := utils.GetLogger()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var publisher events.Publisher = events.NopPublisher{}
	rdb := connectRedis(cfg.RedisAddr, logger)
	if rdb != nil {
		defer rdb.Close()
		publisher = events.NewRedisPublisher(rdb, logger)
	}

	mm := matchManager.NewMatchManager(matchManager.Options{
		Registry:       registry.NewRegistry(logger),
		Publisher:      publisher,
		Clock:          clockwork.NewRealClock(),
		Logger:         logger,
		Retention:      cfg.MatchRetention,
		MessageRate:    cfg.MessageRate,
		MessageBurst:   cfg.MessageBurst,
		AllowedOrigins: cfg.AllowedOrigins,
		WebRTC: signaling.BuildWebRTCConfig(signaling.ICEConfig{
			STUNServers:  cfg.STUNServers,
			TURNURL:      cfg.TURNURL,
			TURNUsername: cfg.TURNUsername,
			TURNPassword: cfg.TURNPassword,
		}),
	})
	go mm.Run(ctx)

	if rdb != nil {
		go func() {
			err := events.SubscribeToCommands(ctx, rdb, logger, func(cmd events.Command) {
				if cmd.Type == events.CommandAbort {
					mm.Abort(cmd.MatchID)
				}
			})
			if err != nil {
				logger.Error("Command subscription ended", zap.Error(err))
			}
		}()
	}

	cleanupJob := jobs.NewCleanupJob(mm, cfg.CleanupSchedule, logger)
	if err := cleanupJob.Start(); err != nil {
		logger.Fatal("Failed to start cleanup job", zap.Error(err))
	}

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	router.Use(metrics.Middleware("duel"))

	registerRoutes(router, mm)

	serverAddr := ":" + cfg.Port
	// no write timeout: websocket connections are long lived
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("Duel service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Duel service shutting down...")

	cleanupJob.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	stop()

	logger.Info("Duel service exited")
}
