// Command server runs the JWT auth API.
//
// @title        JWT Auth API
// @version      1.0
// @description  Registration, login and a token-protected profile endpoint.
// @BasePath     /
//
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwtdemo/auth-system/internal/api"
	"github.com/jwtdemo/auth-system/internal/api/handler"
	"github.com/jwtdemo/auth-system/internal/api/metrics"
	"github.com/jwtdemo/auth-system/internal/core/ports"
	"github.com/jwtdemo/auth-system/internal/core/service"
	"github.com/jwtdemo/auth-system/internal/infrastructure/db/memory"
	mongostore "github.com/jwtdemo/auth-system/internal/infrastructure/db/mongo"
	redisstore "github.com/jwtdemo/auth-system/internal/infrastructure/db/redis"
	"github.com/jwtdemo/auth-system/internal/pkg/config"
	"github.com/jwtdemo/auth-system/internal/pkg/password"
	"github.com/jwtdemo/auth-system/internal/pkg/token"
	"github.com/jwtdemo/auth-system/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env != "production",
		Service: "auth-server",
	})

	for _, w := range cfg.Warnings() {
		log.Warn().Str("setting", w.Setting).Msg("ConfigurationWarning: " + w.Message)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open credential store")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := closeStore(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to close credential store")
		}
	}()

	codec, err := token.NewCodec(cfg.SigningSecret())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build token codec")
	}
	hasher := metrics.InstrumentHasher(password.NewBcryptHasher(password.DefaultCost))
	authService := service.NewAuthService(repo, hasher, codec, logger.Component("auth"))

	e := api.NewRouter(api.Dependencies{
		AuthService: authService,
		Codec:       codec,
		Pingers:     map[string]handler.Pinger{cfg.StoreDriver: repo},
		Logger:      logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func openStore(ctx context.Context, cfg *config.Config) (ports.UserRepository, func(context.Context) error, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		return mongostore.Open(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	case config.StoreRedis:
		return redisstore.Open(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	default:
		return memory.NewUserRepository(), func(context.Context) error { return nil }, nil
	}
}
