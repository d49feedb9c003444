package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/voyplan/voyplan/internal/pkg/config"
	"github.com/voyplan/voyplan/internal/server"
	"github.com/voyplan/voyplan/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file, using environment variables")
	}

	if err := logger.Init(zapcore.InfoLevel, zap.String("service", "voyplan")); err != nil {
		return err
	}
	appLogger := logger.Log
	defer appLogger.Sync()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	otelShutdown, err := server.InitObservability("voyplan", ":9092", appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			appLogger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}()

	srv, err := server.New(cfg, appLogger)
	if err != nil {
		return err
	}

	router := server.SetupRouter(cfg, appLogger)

	if err := server.SetupAssets(router); err != nil {
		appLogger.Error("Failed to setup assets", zap.Error(err))
		return err
	}

	srv.SetRouter(router)

	// pprof lives on its own port, never exposed publicly.
	server.StartPprofServer(":6060", appLogger)

	httpServer := srv.HTTPServer()

	done := make(chan bool, 1)
	go server.GracefulShutdown(httpServer, appLogger, done)

	appLogger.Info("Server starting", zap.String("port", cfg.ServerPort))
	if err := httpServer.ListenAndServe(); err != nil {
		appLogger.Error("Server error", zap.Error(err))
	}

	<-done
	appLogger.Info("Graceful shutdown complete")

	return nil
}
