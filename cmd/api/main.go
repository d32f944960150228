package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/carewell/carehome-api/internal/config"
	"github.com/carewell/carehome-api/internal/handler"
	authHandler "github.com/carewell/carehome-api/internal/handler/auth"
	bedHandler "github.com/carewell/carehome-api/internal/handler/bed"
	healthHandler "github.com/carewell/carehome-api/internal/handler/health"
	memberHandler "github.com/carewell/carehome-api/internal/handler/member"
	"github.com/carewell/carehome-api/internal/middleware"
	"github.com/carewell/carehome-api/internal/repository/postgres"
	"github.com/carewell/carehome-api/internal/router"
	authService "github.com/carewell/carehome-api/internal/service/auth"
	bedService "github.com/carewell/carehome-api/internal/service/bed"
	healthService "github.com/carewell/carehome-api/internal/service/health"
	memberService "github.com/carewell/carehome-api/internal/service/member"
	"github.com/carewell/carehome-api/pkg/auth"
	"github.com/carewell/carehome-api/pkg/logger"
	"github.com/carewell/carehome-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	zerolog.SetGlobalLevel(logger.ParseLevel(cfg.Logging.Level))
	if cfg.Logging.Console {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	appLog := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stderr,
		Console:    cfg.Logging.Console,
	})
	handler.Debug = cfg.Server.Debug

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	bedRepo := postgres.NewBedRepository(db)
	memberRepo := postgres.NewMemberRepository(db)
	userRepo := postgres.NewUserRepository(db)
	apiLogRepo := postgres.NewAPILogRepository(db)

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	hasher := security.NewBcryptHasher(0)

	normalizer := healthService.NewNormalizer(nil)
	healthSvc := healthService.NewService(memberRepo, normalizer)
	memberSvc := memberService.NewService(memberRepo, healthSvc,
		appLog.WithFields(map[string]interface{}{"component": "member"}))
	bedSvc := bedService.NewService(bedRepo)
	authSvc := authService.NewService(userRepo, jwtSvc, hasher)

	authMiddleware := middleware.NewAuthMiddleware(authSvc)
	apiLogMiddleware := middleware.NewAPILogMiddleware(apiLogRepo)

	h := handler.NewHandler(db)
	authH := authHandler.NewHandler(authSvc)
	bedH := bedHandler.NewHandler(bedSvc)
	memberH := memberHandler.NewHandler(memberSvc)
	healthH := healthHandler.NewHandler(healthSvc)

	r := router.NewRouter(
		authMiddleware,
		apiLogMiddleware,
		authH,
		bedH,
		memberH,
		healthH,
		h,
		router.Config{
			Debug:         cfg.Server.Debug,
			RateLimitRPS:  cfg.RateLimit.RPS,
			RateBurst:     cfg.RateLimit.Burst,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "carehome_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server stopped")
}
