package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nsqio/go-nsq"

	"finrag/internal/app"
	"finrag/internal/config"
	"finrag/internal/logger"
	"finrag/internal/memstore"
)

func main() {
	log := slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil)))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("app exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer deps.DB.Close()

	application, err := app.New(cfg, deps.DB, deps.VectorStore, deps.NSQProducer)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}

	var consumer *nsq.Consumer
	if cfg.EnableIngestWorker {
		nsqCfg := nsq.NewConfig()
		nsqCfg.MaxInFlight = cfg.IngestionConcurrency
		consumer, err = nsq.NewConsumer(config.TopicIngest, config.ChannelIngest, nsqCfg)
		if err != nil {
			return fmt.Errorf("create NSQ consumer: %w", err)
		}
		consumer.AddConcurrentHandlers(application.IngestConsumer, cfg.IngestionConcurrency)
		if err := consumer.ConnectToNSQLookupd(cfg.NSQLookupd); err != nil {
			return fmt.Errorf("connect to NSQLookupd: %w", err)
		}
		slog.Info("ingest worker connected",
			"topic", config.TopicIngest,
			"channel", config.ChannelIngest,
			"concurrency", cfg.IngestionConcurrency)
	}

	if cfg.EnableAPI {
		if err := application.Run(ctx); err != nil {
			return err
		}
	} else {
		<-ctx.Done()
	}

	if consumer != nil {
		consumer.Stop()
		<-consumer.StopChan
	}

	// The in-memory backend survives restarts through its snapshot file.
	if ms, ok := deps.VectorStore.(*memstore.Store); ok {
		if err := ms.Save(cfg.MemStorePath); err != nil {
			slog.Error("failed to save vector store snapshot", "error", err)
		}
	}
	return nil
}
