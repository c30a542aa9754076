package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/moviemex/moviemex/internal/api"
	"github.com/moviemex/moviemex/internal/auth"
	"github.com/moviemex/moviemex/internal/catalog"
	"github.com/moviemex/moviemex/internal/config"
	"github.com/moviemex/moviemex/internal/database"
	"github.com/moviemex/moviemex/internal/services"
)

func main() {
	// Load .env file
	godotenv.Load()

	cfg := config.Load()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if cfg.Debug {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	log.Info().Msg("starting MovieMex API server")

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("database connection established")

	// Initialize stores
	customMovies := database.NewCustomMovieStore(db)
	customSeries := database.NewCustomSeriesStore(db)
	movieDownloads := database.NewMovieDownloadStore(db)
	seriesDownloads := database.NewSeriesDownloadStore(db)
	userStore := database.NewUserStore(db)

	// Seed the admin account on first boot
	if err := userStore.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure admin user")
	}

	// External metadata client
	if cfg.TMDBReadToken == "" {
		log.Warn().Msg("TMDB_READ_TOKEN not set, external catalog requests will fail")
	}
	tmdbClient := services.NewTMDBClient(cfg.TMDBReadToken)

	// Core catalog service
	catalogService := catalog.NewService(
		customMovies,
		customSeries,
		movieDownloads,
		seriesDownloads,
		tmdbClient,
		log,
	)

	// Auth
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, admin sessions will not survive restarts")
	}
	tokens := auth.NewManager(cfg.JWTSecret)

	handler := api.NewHandler(
		catalogService,
		tmdbClient,
		customMovies,
		customSeries,
		movieDownloads,
		seriesDownloads,
		userStore,
		tokens,
		log,
	)
	router := api.SetupRoutes(handler, tokens, log)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
