package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boykot-backend/internal/api"
	"boykot-backend/internal/config"
	"boykot-backend/internal/directory"
	"boykot-backend/internal/feed"
	"boykot-backend/internal/handler"
	"boykot-backend/internal/identity"
	"boykot-backend/internal/leaderboard"
	"boykot-backend/internal/logger"
	"boykot-backend/internal/middleware"
	"boykot-backend/internal/redis"
	"boykot-backend/internal/services"
	"boykot-backend/internal/session"
	"boykot-backend/internal/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Could not load config: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		logger.Error("Mongo connection failed: %v", err)
		os.Exit(1)
	}
	logger.Success("Connected to MongoDB")

	redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Error("Redis connection failed: %v", err)
		os.Exit(1)
	}
	logger.Success("Connected to Redis")

	sessions := session.NewManager(session.NewRedisStore(redisClient.Client), cfg.SessionTTL)
	resolver := identity.NewResolver(st, sessions)

	var avatars *services.CloudinaryService
	if cfg.CloudinaryCloudName != "" {
		avatars, err = services.NewCloudinaryService(cfg)
		if err != nil {
			logger.Error("Cloudinary initialization failed: %v", err)
			os.Exit(1)
		}
	} else {
		logger.Warning("Cloudinary not configured, avatar uploads disabled")
	}

	h := handler.New(
		resolver,
		sessions,
		leaderboard.NewService(st),
		directory.NewService(st),
		feed.NewService(st),
		avatars,
	)

	router := api.SetupRouter(h, middleware.NewAuth(sessions))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: middleware.CORS(router),
	}

	go func() {
		logger.Success("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
	if err := st.Close(shutdownCtx); err != nil {
		logger.Error("Mongo disconnect failed: %v", err)
	}
	if err := redisClient.Close(); err != nil {
		logger.Error("Redis disconnect failed: %v", err)
	}

	logger.Success("Server stopped cleanly")
}
