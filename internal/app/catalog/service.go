package catalog

import (
	"context"
	"time"

	"moviemirror/internal/store"
	"moviemirror/internal/tmdb"
)

// Store defines the persistence hooks for catalog workflows.
type Store interface {
	UpsertMovie(ctx context.Context, movie store.Movie) (store.Movie, error)
	MovieByTMDBID(ctx context.Context, tmdbID int64) (store.Movie, error)
	ListMovies(ctx context.Context, filter store.MovieFilter) ([]store.Movie, error)
}

// Service reconciles externally fetched movie records onto the local catalog
// and answers catalog queries.
type Service struct {
	store Store
}

// New constructs a catalog Service backed by the given Store.
func New(st Store) *Service {
	return &Service{store: st}
}

// Upsert maps one external record onto the local catalog, keyed by TMDB id.
// External data wins on mutable fields; genre ids without a mapping entry are
// dropped. The stored average rating is never written here.
func (s *Service) Upsert(ctx context.Context, ext tmdb.Movie, genres map[int]string) (store.Movie, error) {
	movie := store.Movie{
		TMDBID:     ext.ID,
		Title:      ext.Title,
		Overview:   ext.Overview,
		PosterPath: ext.PosterPath,
		Genres:     resolveGenres(ext.GenreIDs, genres),
	}

	if ext.ReleaseDate != "" {
		if t, err := time.Parse("2006-01-02", ext.ReleaseDate); err == nil {
			movie.ReleaseDate = &t
		}
	}

	return s.store.UpsertMovie(ctx, movie)
}

// List returns catalog entries matching the filter.
func (s *Service) List(ctx context.Context, filter store.MovieFilter) ([]store.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListMovies(ctx, filter)
}

// Get looks a catalog entry up by TMDB id.
func (s *Service) Get(ctx context.Context, tmdbID int64) (store.Movie, error) {
	if err := ctx.Err(); err != nil {
		return store.Movie{}, err
	}
	return s.store.MovieByTMDBID(ctx, tmdbID)
}

func resolveGenres(ids []int, genres map[int]string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := genres[id]; ok {
			names = append(names, name)
		}
	}
	return names
}
