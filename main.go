package main

import (
	"context"
	"log"

	"github.com/gabapcia/confirmtrack/internal/config"
	"github.com/gabapcia/confirmtrack/internal/handlers/cli"
	"github.com/gabapcia/confirmtrack/internal/infra/blockchain/ethereum"
	redisnotifier "github.com/gabapcia/confirmtrack/internal/infra/notifier/redis"
	"github.com/gabapcia/confirmtrack/internal/pkg/logger"
	"github.com/gabapcia/confirmtrack/internal/pkg/resilience/retry"
	"github.com/gabapcia/confirmtrack/internal/pkg/telemetry"
	transporthttp "github.com/gabapcia/confirmtrack/internal/pkg/transport/http"
	"github.com/gabapcia/confirmtrack/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/confirmtrack/internal/txconfirm"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if cfg.TelemetryEnabled {
		shutdown, err := telemetry.Init(ctx, cfg.ServiceName)
		if err != nil {
			log.Fatalf("failed to initialize telemetry: %v", err)
		}
		defer shutdown(ctx)
	}

	if err := logger.Init(logger.WithLevel(cfg.LogLevel)); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	httpClient := transporthttp.NewClient()
	rpcConn := jsonrpc.NewClient(httpClient.StandardClient(), cfg.RPCEndpoint)
	ethClient := ethereum.NewClient(rpcConn, ethereum.WithRetry(retry.New()))

	var notifier txconfirm.ProgressNotifier = txconfirm.NopProgressNotifier{}
	if cfg.RedisAddr != "" {
		redisClient, err := redisnotifier.NewClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal(ctx, "failed to connect to redis", "error", err)
		}
		defer redisClient.Close()

		notifier = redisClient
	}

	newTracker := func(opts ...txconfirm.Option) txconfirm.Service {
		baseOpts := []txconfirm.Option{
			txconfirm.WithRequiredConfirmations(cfg.RequiredConfirmations),
			txconfirm.WithMaxChecks(cfg.MaxConfirmationChecks),
			txconfirm.WithPollInterval(cfg.PollInterval),
		}
		if cfg.SubscribeNewHeads {
			baseOpts = append(baseOpts, txconfirm.WithHeadSubscriber(ethClient))
		}

		return txconfirm.New(ethClient, append(baseOpts, opts...)...)
	}

	if err := cli.Run(ctx, newTracker, notifier); err != nil {
		logger.Fatal(ctx, "command failed", "error", err)
	}
}
