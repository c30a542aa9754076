package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/moviemex/moviemex/internal/auth"
)

// SetupRoutes configures all API routes. Admin routes sit behind the
// bearer-token and admin-role middleware; everything else is public.
func SetupRoutes(handler *Handler, tokens *auth.Manager, log zerolog.Logger) http.Handler {
	r := mux.NewRouter()

	// API v1 routes
	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Auth
	api.HandleFunc("/auth/login", handler.Login).Methods("POST")
	api.HandleFunc("/auth/verify", handler.VerifyToken).Methods("GET")

	// Discover
	api.HandleFunc("/discover/movies", handler.DiscoverMovies).Methods("GET")
	api.HandleFunc("/discover/tv", handler.DiscoverSeries).Methods("GET")
	api.HandleFunc("/discover/upcoming", handler.DiscoverUpcoming).Methods("GET")

	// Search
	api.HandleFunc("/search", handler.Search).Methods("GET")

	// Title detail + recommendations
	api.HandleFunc("/movies/{movieId}", handler.GetTitle).Methods("GET")
	api.HandleFunc("/movies/{movieId}/recommendations", handler.GetRecommendations).Methods("GET")

	// Download links
	api.HandleFunc("/downloads/movie/{movieId}", handler.GetMovieDownloads).Methods("GET")
	api.HandleFunc("/downloads/series/{seriesId}", handler.GetSeriesDownloads).Methods("GET")

	// Admin
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(mux.MiddlewareFunc(tokens.Require))
	admin.Use(mux.MiddlewareFunc(auth.RequireAdmin))

	admin.HandleFunc("/movies/custom", handler.CreateCustomMovie).Methods("POST")
	admin.HandleFunc("/movies/custom", handler.ListCustomMovies).Methods("GET")
	admin.HandleFunc("/movies/custom", handler.UpdateCustomMovie).Methods("PUT")
	admin.HandleFunc("/movies/custom", handler.DeleteCustomMovie).Methods("DELETE")

	admin.HandleFunc("/series/custom", handler.CreateCustomSeries).Methods("POST")
	admin.HandleFunc("/series/custom", handler.ListCustomSeries).Methods("GET")
	admin.HandleFunc("/series/custom", handler.UpdateCustomSeries).Methods("PUT")
	admin.HandleFunc("/series/custom", handler.DeleteCustomSeries).Methods("DELETE")

	admin.HandleFunc("/downloads/movie", handler.SetMovieDownloads).Methods("POST")
	admin.HandleFunc("/downloads/movie", handler.DeleteMovieDownloads).Methods("DELETE")
	admin.HandleFunc("/downloads/series", handler.SetSeriesDownloads).Methods("POST")
	admin.HandleFunc("/downloads/series", handler.DeleteSeriesDownloads).Methods("DELETE")

	r.Use(mux.MiddlewareFunc(requestLogging(log)))

	// Preflight requests never match a method-restricted mux route, so CORS
	// wraps the router from outside.
	return corsMiddleware(r)
}
