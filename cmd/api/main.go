package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"charchat/internal/config"
	"charchat/internal/db"
	apihttp "charchat/internal/http"
	"charchat/internal/llm"
	"charchat/internal/repository"
	"charchat/internal/service"
	"charchat/internal/storage"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	characterRepo := repository.NewPgCharacterRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)

	llmClient := llm.NewHTTPClient(cfg.ClaudeBaseURL, cfg.ClaudeAPIKey, cfg.ClaudeModel, logger)

	fileStore, err := storage.NewFileStore(logger, cfg.UploadDir, cfg.BaseURL)
	if err != nil {
		logger.Fatal("file store init", zap.Error(err))
	}

	var sendLimiter service.SendRateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			sendLimiter = service.NewRedisSendRateLimiter(redisClient, time.Minute, 20)
		}
		cancel()
	}

	jwtSvc := service.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
	authSvc := service.NewAuthService(logger, userRepo)
	characterSvc := service.NewCharacterService(characterRepo)
	messageSvc := service.NewMessageService(logger, messageRepo, characterRepo, llmClient, sendLimiter)

	router := apihttp.NewRouter(
		logger,
		apihttp.AuthRequired(jwtSvc, authSvc),
		apihttp.AuthOptional(jwtSvc, authSvc),
		apihttp.NewAuthHandler(logger, authSvc, jwtSvc),
		apihttp.NewCharacterHandler(logger, characterSvc),
		apihttp.NewMessageHandler(logger, messageSvc),
		apihttp.NewUploadHandler(logger, fileStore),
		cfg.FrontendURL,
		cfg.UploadDir,
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
