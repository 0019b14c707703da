package watchlist

import (
	"context"

	"moviemirror/internal/locks"
	"moviemirror/internal/store"
)

// Store defines the persistence hooks for watchlist workflows. The backing
// table enforces set semantics with a (user, movie) uniqueness constraint.
type Store interface {
	ToggleWatchlist(ctx context.Context, userID, movieID int64) (added bool, err error)
	Watchlist(ctx context.Context, userID int64) ([]store.Movie, error)
}

type member struct {
	userID  int64
	movieID int64
}

// Service flips watchlist membership and answers watchlist queries.
type Service struct {
	store Store
	locks *locks.Keyed[member]
}

// New constructs a watchlist Service backed by the given Store.
func New(st Store) *Service {
	return &Service{store: st, locks: locks.NewKeyed[member]()}
}

// Toggle flips the movie's membership in the user's watchlist and reports
// the resulting state. Calls for the same (user, movie) pair serialize so
// each call observes the state the previous one left behind; an even number
// of toggles restores the original membership.
func (s *Service) Toggle(ctx context.Context, userID, movieID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	unlock := s.locks.Lock(member{userID: userID, movieID: movieID})
	defer unlock()

	return s.store.ToggleWatchlist(ctx, userID, movieID)
}

// List returns the movies on the user's watchlist.
func (s *Service) List(ctx context.Context, userID int64) ([]store.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Watchlist(ctx, userID)
}
