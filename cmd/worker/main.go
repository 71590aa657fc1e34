package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"resumevault/internal/config"
	"resumevault/internal/exportgw"
	"resumevault/internal/kvstore"
	"resumevault/internal/metrics"
	"resumevault/internal/pdf"
	"resumevault/internal/resume"
	"resumevault/internal/storage"
	"resumevault/internal/tasks"
	"resumevault/internal/worker"
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
	logger.Info("kv store ready for worker", slog.String("backend", cfg.Store.Backend))

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))

	repo := resume.NewRepository(store)
	printer := pdf.NewChromePrinter(0)

	dirHandle := exportgw.NewDirHandle(cfg.Export.Directory)
	gateway := exportgw.NewGateway(logger,
		exportgw.NewRetainedDirStrategy(dirHandle),
		exportgw.NewDownloadFallbackStrategy(storageClient, cfg.Export.DownloadPrefix, cfg.Export.PresignTTL()),
	)

	exportHandler := worker.NewPDFExportHandler(repo, printer, gateway, redisClient, logger)

	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Addr()}
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
	})

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypePDFExport, exportHandler)

	logger.Info("worker service started", slog.String("redis_addr", cfg.Redis.Addr()))
	if err := server.Run(mux); err != nil {
		logger.Error("worker server stopped", slog.Any("error", err))
	}
}
