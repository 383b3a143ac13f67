package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meetmii/internal/client"
	"meetmii/internal/config"
	"meetmii/internal/events"
	"meetmii/internal/handler"
	"meetmii/internal/repository"
	"meetmii/internal/service"
	"meetmii/internal/util"
)

const defaultPort = 8004

func main() {
	cfg := config.Load()
	if os.Getenv("SERVER_PORT") == "" {
		cfg.Server.Port = defaultPort
	}

	logger := util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)
	defer util.Sync()

	ch, err := client.NewClickHouseClient(cfg, logger)
	if err != nil {
		util.Fatal("Failed to connect to ClickHouse", util.ErrorField(err))
	}

	redisClient, err := client.NewRedisClient(cfg, logger)
	if err != nil {
		util.Fatal("Failed to connect to Redis", util.ErrorField(err))
	}

	scans := repository.NewScanRepository(ch)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := scans.EnsureSchema(ctx)
		cancel()
		if err != nil {
			util.Fatal("Failed to create scan events table", util.ErrorField(err))
		}
	}

	kafkaConsumer := client.NewKafkaConsumer(cfg, logger)
	scanConsumer := events.NewScanConsumer(kafkaConsumer, scans, logger)
	scanConsumer.Start()

	analyticsService := service.NewAnalyticsService(scans, redisClient, logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, logger)

	router := handler.NewRouter(logger, analyticsHandler.RegisterRoutes)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Fatal("Server failed to start", util.ErrorField(err))
		}
	}()

	util.Info("Analytics service started",
		util.String("environment", cfg.Environment),
		util.String("address", server.Addr),
		util.String("kafka_topic", cfg.Kafka.Topic),
	)

	waitForShutdown(server, func(ctx context.Context) {
		if err := scanConsumer.Stop(ctx); err != nil {
			util.Error("Failed to stop scan consumer", util.ErrorField(err))
		}
		if err := redisClient.Close(); err != nil {
			util.Error("Failed to close Redis client", util.ErrorField(err))
		}
		if err := ch.Close(); err != nil {
			util.Error("Failed to close ClickHouse client", util.ErrorField(err))
		}
	})
}

func waitForShutdown(server *http.Server, cleanup func(context.Context)) {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-signalChan
	util.Info("Received shutdown signal", util.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		util.Error("Failed to shutdown server gracefully", util.ErrorField(err))
	} else {
		util.Info("Server shutdown completed")
	}
	cleanup(ctx)
}
