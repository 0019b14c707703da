package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ToggleWatchlist flips the movie's membership in the user's watchlist and
// reports whether the movie is on the list afterwards. Membership rows live
// in an association table whose primary key enforces set semantics, so a
// racing pair of toggles can never leave two rows behind.
func (s *Store) ToggleWatchlist(ctx context.Context, userID, movieID int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists int
	err = tx.QueryRowContext(ctx, `
		SELECT 1
		FROM movies
		WHERE id = $1
	`, movieID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrMovieNotFound
			return false, err
		}
		return false, fmt.Errorf("lookup movie: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM watchlist
		WHERE user_id = $1 AND movie_id = $2
	`, userID, movieID)
	if err != nil {
		return false, fmt.Errorf("remove watchlist entry: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}

	added := false
	if removed == 0 {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO watchlist (user_id, movie_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, movie_id) DO NOTHING
		`, userID, movieID); err != nil {
			return false, fmt.Errorf("insert watchlist entry: %w", err)
		}
		added = true
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit tx: %w", err)
	}

	return added, nil
}

// Watchlist returns the movies on the user's watchlist.
func (s *Store) Watchlist(ctx context.Context, userID int64) ([]Movie, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.tmdb_id, m.title, m.overview, m.release_date, m.genres, m.poster_path, m.average_rating
		FROM watchlist w
		JOIN movies m ON m.id = w.movie_id
		WHERE w.user_id = $1
		ORDER BY m.id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select watchlist: %w", err)
	}
	defer rows.Close()

	movies, err := scanMovieRows(rows)
	if err != nil {
		return nil, err
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchlist: %w", err)
	}

	return movies, nil
}
