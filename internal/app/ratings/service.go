package ratings

import (
	"context"
	"errors"

	"moviemirror/internal/locks"
)

// ErrInvalidScore rejects scores outside the 1-5 range before any write.
var ErrInvalidScore = errors.New("score must be between 1 and 5")

// Store defines the persistence hooks for rating workflows. SetRating must
// apply the rating write and the average recomputation as one atomic unit.
type Store interface {
	SetRating(ctx context.Context, userID, tmdbID int64, score int) (movieID int64, average float64, err error)
}

// Result reports the outcome of a rating write.
type Result struct {
	MovieID       int64   `json:"movieId"`
	UserID        int64   `json:"userId"`
	Score         int     `json:"newRating"`
	AverageRating float64 `json:"averageRating"`
}

// Service records per-user movie ratings and keeps each movie's average
// consistent under concurrent writes.
type Service struct {
	store Store
	locks *locks.Keyed[int64]
}

// New constructs a ratings Service backed by the given Store.
func New(st Store) *Service {
	return &Service{store: st, locks: locks.NewKeyed[int64]()}
}

// SetRating validates the score, then upserts the user's rating and the
// movie's recomputed average. Calls for the same movie serialize on a
// per-movie lock so two concurrent writes never produce an average computed
// from a partial write set; calls for different movies proceed in parallel.
func (s *Service) SetRating(ctx context.Context, userID, tmdbID int64, score int) (Result, error) {
	if score < 1 || score > 5 {
		return Result{}, ErrInvalidScore
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	unlock := s.locks.Lock(tmdbID)
	defer unlock()

	movieID, average, err := s.store.SetRating(ctx, userID, tmdbID, score)
	if err != nil {
		return Result{}, err
	}

	return Result{
		MovieID:       movieID,
		UserID:        userID,
		Score:         score,
		AverageRating: average,
	}, nil
}
