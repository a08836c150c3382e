package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	httpctx "github.com/pkondratev/auth-server/internal/api/http/context"
	"github.com/pkondratev/auth-server/internal/api/http/router"
	"github.com/pkondratev/auth-server/internal/config"
	"github.com/pkondratev/auth-server/internal/logger"
	"github.com/pkondratev/auth-server/internal/model"
	"github.com/pkondratev/auth-server/internal/password"
	"github.com/pkondratev/auth-server/internal/repository/postgres"
	"github.com/pkondratev/auth-server/internal/server"
	"github.com/pkondratev/auth-server/internal/service"
	"github.com/pkondratev/auth-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
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
	ctxMgr := httpctx.NewManager()

	r := router.New(authService, db, codec, ctxMgr, logger)
	httpServer := server.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
