package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Movie models a locally mirrored catalog entry. TMDBID is the reconciliation
// key; ID is the storage key and never changes across re-syncs.
type Movie struct {
	ID            int64      `json:"id"`
	TMDBID        int64      `json:"tmdbId"`
	Title         string     `json:"title"`
	Overview      string     `json:"overview,omitempty"`
	ReleaseDate   *time.Time `json:"releaseDate,omitempty"`
	Genres        []string   `json:"genres"`
	PosterPath    string     `json:"posterPath,omitempty"`
	AverageRating *float64   `json:"averageRating,omitempty"`
}

// UpsertMovie inserts the movie or, when its TMDB id is already known,
// overwrites the externally sourced fields in place. The internal id, the
// stored average rating and all rating/watchlist rows are left untouched.
func (s *Store) UpsertMovie(ctx context.Context, movie Movie) (Movie, error) {
	genresJSON, err := json.Marshal(movie.Genres)
	if err != nil {
		return Movie{}, fmt.Errorf("prepare genres payload: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO movies (tmdb_id, title, overview, release_date, genres, poster_path)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6)
		ON CONFLICT (tmdb_id) DO UPDATE SET
			title = EXCLUDED.title,
			overview = EXCLUDED.overview,
			release_date = EXCLUDED.release_date,
			genres = EXCLUDED.genres,
			poster_path = EXCLUDED.poster_path,
			updated_at = now()
		RETURNING id, average_rating
	`, movie.TMDBID, movie.Title, movie.Overview, movie.ReleaseDate, string(genresJSON), movie.PosterPath).
		Scan(&movie.ID, &movie.AverageRating)
	if err != nil {
		return Movie{}, fmt.Errorf("upsert movie: %w", err)
	}

	return movie, nil
}

const movieColumns = `id, tmdb_id, title, overview, release_date, genres, poster_path, average_rating`

// MovieByTMDBID looks a movie up by its external identifier.
func (s *Store) MovieByTMDBID(ctx context.Context, tmdbID int64) (Movie, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+movieColumns+`
		FROM movies
		WHERE tmdb_id = $1
	`, tmdbID)
	return scanMovie(row)
}

// MovieByID looks a movie up by its internal identifier.
func (s *Store) MovieByID(ctx context.Context, id int64) (Movie, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+movieColumns+`
		FROM movies
		WHERE id = $1
	`, id)
	return scanMovie(row)
}

// MovieFilter constrains the results returned by ListMovies.
type MovieFilter struct {
	Genre    string
	Search   string
	Page     int
	PageSize int
}

// ListMovies returns movies matching the filter, offset-paginated.
func (s *Store) ListMovies(ctx context.Context, filter MovieFilter) ([]Movie, error) {
	query := `
		SELECT ` + movieColumns + `
		FROM movies
	`

	var (
		clauses []string
		args    []any
	)

	if genre := strings.TrimSpace(filter.Genre); genre != "" {
		genreJSON, err := json.Marshal([]string{genre})
		if err != nil {
			return nil, fmt.Errorf("marshal genre filter: %w", err)
		}
		args = append(args, string(genreJSON))
		clauses = append(clauses, fmt.Sprintf("genres @> $%d::jsonb", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		clauses = append(clauses, fmt.Sprintf("title ILIKE $%d", len(args)))
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY id ASC"

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 10
	}
	args = append(args, pageSize)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, (page-1)*pageSize)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select movies: %w", err)
	}
	defer rows.Close()

	movies, err := scanMovieRows(rows)
	if err != nil {
		return nil, err
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}

	return movies, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (Movie, error) {
	var (
		movie       Movie
		releaseDate sql.NullTime
		genresJSON  []byte
		posterPath  sql.NullString
		overview    sql.NullString
	)

	err := row.Scan(&movie.ID, &movie.TMDBID, &movie.Title, &overview, &releaseDate, &genresJSON, &posterPath, &movie.AverageRating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Movie{}, ErrMovieNotFound
		}
		return Movie{}, fmt.Errorf("scan movie: %w", err)
	}

	movie.Overview = overview.String
	movie.PosterPath = posterPath.String
	if releaseDate.Valid {
		t := releaseDate.Time
		movie.ReleaseDate = &t
	}
	if len(genresJSON) > 0 {
		if err := json.Unmarshal(genresJSON, &movie.Genres); err != nil {
			return Movie{}, fmt.Errorf("decode genres payload: %w", err)
		}
	}

	return movie, nil
}

func scanMovieRows(rows *sql.Rows) ([]Movie, error) {
	var movies []Movie
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}
	return movies, nil
}
