package main

import (
	"net/http"
	"time"

	"moviemirror/internal/app/catalog"
	"moviemirror/internal/app/ratings"
	"moviemirror/internal/app/syncer"
	"moviemirror/internal/app/users"
	"moviemirror/internal/app/watchlist"
	"moviemirror/internal/auth"
	"moviemirror/internal/httpapi"
	"moviemirror/internal/middleware"
	"moviemirror/internal/store"
	"moviemirror/internal/tmdb"
)

// services bundles everything the HTTP surface and the scheduler share.
type services struct {
	syncer  *syncer.Service
	handler http.Handler
}

func buildServices(cfg Config, dataStore *store.Store) services {
	tmdbClient := tmdb.NewHTTPClient(cfg.TMDBBaseURL, cfg.TMDBAPIKey)
	tokens := auth.New(cfg.JWTSecret, cfg.TokenTTL)

	catalogSvc := catalog.New(dataStore)
	ratingsSvc := ratings.New(dataStore)
	watchlistSvc := watchlist.New(dataStore)
	userSvc := users.New(dataStore, tokens)
	syncSvc := syncer.New(tmdbClient, catalogSvc, cfg.SyncInterval)

	api := httpapi.New(userSvc, catalogSvc, ratingsSvc, watchlistSvc, syncSvc, tokens)

	handler := middleware.RequestLogging()(api.Routes())
	handler = middleware.CORS(cfg.AllowedOrigins)(handler)

	return services{syncer: syncSvc, handler: handler}
}

func newHTTPServer(cfg Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
