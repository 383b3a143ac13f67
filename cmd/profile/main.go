package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meetmii/internal/auth"
	"meetmii/internal/client"
	"meetmii/internal/config"
	"meetmii/internal/db"
	"meetmii/internal/events"
	"meetmii/internal/handler"
	"meetmii/internal/models"
	"meetmii/internal/repository"
	"meetmii/internal/service"
	"meetmii/internal/util"
)

const defaultPort = 8002

func main() {
	cfg := config.Load()
	if os.Getenv("SERVER_PORT") == "" {
		cfg.Server.Port = defaultPort
	}

	logger := util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)
	defer util.Sync()

	gormDB, err := db.NewMySQL(cfg.MySQL.DSN)
	if err != nil {
		util.Fatal("Failed to connect to MySQL", util.ErrorField(err))
	}
	if err := gormDB.AutoMigrate(&models.Profile{}); err != nil {
		util.Fatal("Failed to migrate profiles table", util.ErrorField(err))
	}

	producer := client.NewKafkaProducer(cfg, logger)
	publisher := events.NewScanPublisher(producer, logger)

	profiles := repository.NewProfileRepository(gormDB)
	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.TokenExpiry())
	profileService := service.NewProfileService(profiles, publisher, logger)
	profileHandler := handler.NewProfileHandler(profileService, tokens, logger)

	router := handler.NewRouter(logger, profileHandler.RegisterRoutes)

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

	util.Info("Profile service started",
		util.String("environment", cfg.Environment),
		util.String("address", server.Addr),
	)

	waitForShutdown(server, func() {
		if err := producer.Close(); err != nil {
			util.Error("Failed to close Kafka producer", util.ErrorField(err))
		}
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	})
}

func waitForShutdown(server *http.Server, cleanup func()) {
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
	cleanup()
}
