package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/porraza/porraza-server/config"
	"github.com/porraza/porraza-server/db"
	"github.com/porraza/porraza-server/handlers"
	"github.com/porraza/porraza-server/live"
	"github.com/porraza/porraza-server/middleware"
	"github.com/porraza/porraza-server/repositories"
	api "github.com/porraza/porraza-server/routes"
	"github.com/porraza/porraza-server/services"
	"github.com/porraza/porraza-server/storage"
)

const schedulerInterval = 30 * time.Second // How often the match scheduler runs

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	wsHub := live.NewHub()
	go wsHub.Run()
	logger.Info("live update hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	stadiumRepo := repositories.NewPostgresStadiumRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	predictionRepo := repositories.NewPostgresPredictionRepository(dbConn)
	leagueRepo := repositories.NewPostgresLeagueRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)
	logger.Info("repositories initialized")

	authService := services.NewAuthService(userRepo)
	emailService := services.NewEmailService(cfg)
	userService := services.NewUserService(userRepo, uploader)
	teamService := services.NewTeamService(teamRepo, uploader)
	stadiumService := services.NewStadiumService(stadiumRepo, uploader)
	scoringService := services.NewScoringService(predictionRepo, standingRepo)
	matchService := services.NewMatchService(dbConn, matchRepo, scoringService, uploader, wsHub, logger)
	predictionService := services.NewPredictionService(dbConn, predictionRepo, matchRepo, wsHub)
	bracketService := services.NewBracketService(matchRepo, predictionRepo, uploader)
	leagueService := services.NewLeagueService(dbConn, leagueRepo, standingRepo)
	dashboardService := services.NewDashboardService(matchRepo, standingRepo, leagueRepo, uploader)
	logger.Info("services initialized")

	// Scheduler: flip scheduled matches past kickoff to in_progress so
	// their predictions lock even with no admin around.
	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()
		logger.Info("match scheduler started", slog.Duration("interval", schedulerInterval))

		// Run once immediately at startup, then on ticker.
		if err := matchService.AutoStartDueMatches(context.Background()); err != nil {
			logger.Error("scheduler: initial run failed", slog.Any("error", err))
		}

		for range ticker.C {
			if err := matchService.AutoStartDueMatches(context.Background()); err != nil {
				logger.Error("scheduler: periodic run failed", slog.Any("error", err))
			}
		}
	}()

	h := api.Handlers{
		Auth:        handlers.NewAuthHandler(authService, emailService, cfg.JWTSecretKey),
		User:        handlers.NewUserHandler(userService),
		Dashboard:   handlers.NewDashboardHandler(dashboardService),
		Prediction:  handlers.NewPredictionHandler(predictionService),
		Bracket:     handlers.NewBracketHandler(bracketService),
		Match:       handlers.NewMatchHandler(matchService),
		Leaderboard: handlers.NewLeaderboardHandler(scoringService),
		League:      handlers.NewLeagueHandler(leagueService),
		Team:        handlers.NewTeamHandler(teamService),
		Stadium:     handlers.NewStadiumHandler(stadiumService),
		WebSocket:   handlers.NewWebSocketHandler(wsHub),
		Pages:       handlers.NewPagesHandler(),
		Docs:        handlers.NewDocsHandler(),
	}
	logger.Info("HTTP handlers initialized")

	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey)
	routeGuard := middleware.NewRouteGuard(cfg.SupportedLocales)

	router := chi.NewRouter()
	api.SetupRoutes(router, h, authenticator, routeGuard)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
