// Command sweeper deletes expired refresh token records. Intended to run
// periodically, e.g. from cron.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkondratev/auth-server/internal/config"
	"github.com/pkondratev/auth-server/internal/logger"
	"github.com/pkondratev/auth-server/internal/password"
	"github.com/pkondratev/auth-server/internal/repository/postgres"
	"github.com/pkondratev/auth-server/internal/service"
	"github.com/pkondratev/auth-server/internal/token"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)
	codec := token.NewJWT(cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWT.RefreshTTLDays)*24*time.Hour,
	)
	passwords := password.NewService(password.Params{
		Time:        cfg.Argon2.TimeCost,
		MemoryKiB:   cfg.Argon2.MemoryKiB,
		Parallelism: cfg.Argon2.Parallelism,
	}, cfg.Password.MinLength)

	authService := service.NewAuth(db.DB, userRepo, refreshTokenRepo, codec, passwords, logger)

	count, err := authService.SweepExpired(ctx)
	if err != nil {
		logger.Fatal("sweep failed", "error", err)
	}

	logger.Info("sweep complete", "deleted", count)
}
