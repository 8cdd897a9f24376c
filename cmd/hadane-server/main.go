package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/quietlotus/hadane/internal/api"
	"github.com/quietlotus/hadane/internal/db"
	"github.com/quietlotus/hadane/internal/services"
)

func main() {
	location := mustLoadLocation(getEnv("TZ", "UTC"))
	time.Local = location

	secretKey := getEnv("SECRET_KEY", "change_me_in_production")
	dbPath := getEnv("DB_PATH", filepath.Join("data", "hadane.db"))
	port := getEnv("PORT", "8080")
	devUserID := getEnv("DEV_USER_ID", "")

	zapLog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer zapLog.Sync()

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		zapLog.Fatal("database init failed", zap.Error(err))
	}

	handler := api.NewHandler(database, secretKey, location, zapLog)

	app := fiber.New(fiber.Config{
		AppName:               "Hadane",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	api.RegisterRoutes(app, handler)

	// Convenience for local development: mint a token for a fixed user so
	// the CLI can talk to a fresh database without an auth service.
	if devUserID != "" {
		token, err := services.BuildAccessToken([]byte(secretKey), devUserID, services.DefaultAccessTokenTTL, time.Now())
		if err != nil {
			zapLog.Fatal("dev token mint failed", zap.Error(err))
		}
		zapLog.Info("issued development token",
			zap.String("user_id", devUserID),
			zap.String("token", token))
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			zapLog.Error("server shutdown failed", zap.Error(err))
		}
	}()

	zapLog.Info("hadane-server listening",
		zap.String("addr", "http://0.0.0.0:"+port),
		zap.String("db", dbPath),
		zap.String("tz", location.String()))
	if err := app.Listen(":" + port); err != nil {
		zapLog.Fatal("server exited", zap.Error(err))
	}
}

func mustLoadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("invalid TZ %q, falling back to UTC", name)
		return time.UTC
	}
	return location
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
