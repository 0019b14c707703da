package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"moviemirror/internal/app/ratings"
	"moviemirror/internal/store"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Signup(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (string, error)
	Profile(ctx context.Context, userID int64) (store.User, error)
}

// CatalogService answers catalog queries.
type CatalogService interface {
	List(ctx context.Context, filter store.MovieFilter) ([]store.Movie, error)
	Get(ctx context.Context, tmdbID int64) (store.Movie, error)
}

// RatingsService records per-user movie ratings.
type RatingsService interface {
	SetRating(ctx context.Context, userID, tmdbID int64, score int) (ratings.Result, error)
}

// WatchlistService flips and lists watchlist membership.
type WatchlistService interface {
	Toggle(ctx context.Context, userID, movieID int64) (bool, error)
	List(ctx context.Context, userID int64) ([]store.Movie, error)
}

// SyncService triggers a full catalog sync pass.
type SyncService interface {
	TriggerSync() error
}

// TokenVerifier resolves bearer tokens to user ids.
type TokenVerifier interface {
	VerifyToken(token string) (int64, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users     UserService
	catalog   CatalogService
	ratings   RatingsService
	watchlist WatchlistService
	sync      SyncService
	tokens    TokenVerifier
}

// New configures a Server with the given services.
func New(
	users UserService,
	catalog CatalogService,
	ratingsSvc RatingsService,
	watchlist WatchlistService,
	sync SyncService,
	tokens TokenVerifier,
) *Server {
	return &Server{
		users:     users,
		catalog:   catalog,
		ratings:   ratingsSvc,
		watchlist: watchlist,
		sync:      sync,
		tokens:    tokens,
	}
}

// Routes exposes the HTTP handlers.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /api/v1/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	mux.HandleFunc("GET /api/v1/movies", s.handleListMovies)
	mux.HandleFunc("GET /api/v1/movies/{id}", s.handleGetMovie)
	mux.HandleFunc("POST /api/v1/movies/{id}/rate", s.handleRateMovie)
	mux.HandleFunc("POST /api/v1/movies/{id}/watchlist", s.handleToggleWatchlist)
	mux.HandleFunc("GET /api/v1/me", s.handleProfile)
	mux.HandleFunc("GET /api/v1/me/watchlist", s.handleWatchlist)

	mux.HandleFunc("POST /api/v1/sync", s.handleTriggerSync)

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

// currentUser resolves the request's bearer token to a user id. A zero
// return means the response has already been written.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return 0, false
	}

	userID, err := s.tokens.VerifyToken(token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid or expired token"})
		return 0, false
	}
	return userID, true
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
