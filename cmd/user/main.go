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
	"meetmii/internal/config"
	"meetmii/internal/db"
	"meetmii/internal/handler"
	"meetmii/internal/models"
	"meetmii/internal/repository"
	"meetmii/internal/service"
	"meetmii/internal/util"
)

const defaultPort = 8001

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
	if err := gormDB.AutoMigrate(&models.User{}); err != nil {
		util.Fatal("Failed to migrate users table", util.ErrorField(err))
	}

	users := repository.NewUserRepository(gormDB)
	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.TokenExpiry())
	userService := service.NewUserService(users, tokens, logger)
	userHandler := handler.NewUserHandler(userService, tokens, logger)

	router := handler.NewRouter(logger, userHandler.RegisterRoutes)

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

	util.Info("User service started",
		util.String("environment", cfg.Environment),
		util.String("address", server.Addr),
	)

	waitForShutdown(server, func() {
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
