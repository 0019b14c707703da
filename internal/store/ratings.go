package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Rating captures one user's score for one movie. There is at most one row
// per (user, movie) pair.
type Rating struct {
	UserID  int64 `json:"userId"`
	MovieID int64 `json:"movieId"`
	Score   int   `json:"score"`
}

// SetRating upserts the user's rating for the movie identified by its TMDB id
// and recomputes the movie's average rating from all stored scores. The whole
// sequence runs in one transaction; the movie row is locked first so that
// concurrent calls for the same movie serialize and no update is lost.
// The returned average is the unrounded mean including the written score.
func (s *Store) SetRating(ctx context.Context, userID, tmdbID int64, score int) (int64, float64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var movieID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id
		FROM movies
		WHERE tmdb_id = $1
		FOR UPDATE
	`, tmdbID).Scan(&movieID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrMovieNotFound
			return 0, 0, err
		}
		return 0, 0, fmt.Errorf("lock movie: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ratings (user_id, movie_id, score)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, movie_id) DO UPDATE SET
			score = EXCLUDED.score,
			updated_at = now()
	`, userID, movieID, score)
	if err != nil {
		return 0, 0, fmt.Errorf("upsert rating: %w", err)
	}

	var average float64
	err = tx.QueryRowContext(ctx, `
		SELECT AVG(score)::float8
		FROM ratings
		WHERE movie_id = $1
	`, movieID).Scan(&average)
	if err != nil {
		return 0, 0, fmt.Errorf("compute average: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE movies
		SET average_rating = $2, updated_at = now()
		WHERE id = $1
	`, movieID, average)
	if err != nil {
		return 0, 0, fmt.Errorf("store average: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit tx: %w", err)
	}

	return movieID, average, nil
}
