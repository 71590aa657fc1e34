package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"resumevault/internal/account"
	"resumevault/internal/api"
	"resumevault/internal/auth"
	"resumevault/internal/config"
	"resumevault/internal/exportgw"
	"resumevault/internal/kvstore"
	"resumevault/internal/resume"
	"resumevault/internal/storage"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	store, err := kvstore.Open(cfg, redisClient)
	if err != nil {
		log.Fatalf("open kv store: %v", err)
	}
	logger.Info("kv store ready", slog.String("backend", cfg.Store.Backend))

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))

	authService, err := buildAuthService(cfg)
	if err != nil {
		log.Fatalf("init auth service: %v", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Error("close asynq client failed", slog.Any("error", err))
		}
	}()

	directory := account.NewDirectory(store)
	session := account.NewSession(store)
	if err := session.Rehydrate(context.Background()); err != nil {
		log.Fatalf("rehydrate session: %v", err)
	}

	repo := resume.NewRepository(store)
	autoSaver := resume.NewAutoSaver(repo, cfg.AutoSave.Debounce(), logger)

	dirHandle := exportgw.NewDirHandle(cfg.Export.Directory)
	gateway := exportgw.NewGateway(logger,
		exportgw.NewRetainedDirStrategy(dirHandle),
		exportgw.NewDownloadFallbackStrategy(storageClient, cfg.Export.DownloadPrefix, cfg.Export.PresignTTL()),
	)

	router := api.NewRouter(logger)
	api.RegisterRoutes(router, api.Deps{
		Store:       store,
		Directory:   directory,
		Session:     session,
		Repo:        repo,
		AutoSaver:   autoSaver,
		AsynqClient: asynqClient,
		AuthService: authService,
		Redis:       redisClient,
		Logger:      logger,
		Gateway:     gateway,

		PublicBaseURL: cfg.Public.BaseURL,
		ClamdAddr:     cfg.Clamd.Addr,

		LoginRateLimitPerHour: cfg.API.LoginRateLimitPerHour,
		LoginLockThreshold:    cfg.API.LoginLockThreshold,
		LoginLockTTL:          cfg.API.LoginLockTTL(),
		CookieDomain:          cfg.Auth.CookieDomain,
		AllowedWSOrigins:      cfg.Auth.WSOrigins(),
	})

	address := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("api listening", slog.String("address", address))
	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}

func buildAuthService(cfg *config.Config) (*auth.AuthService, error) {
	privatePEM, err := os.ReadFile(cfg.Auth.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	publicPEM, err := os.ReadFile(cfg.Auth.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	return auth.NewAuthService(privatePEM, publicPEM, cfg.Auth.AccessTTL(), cfg.Auth.RefreshTTL())
}
