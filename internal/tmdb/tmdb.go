package tmdb

import (
	"context"
)

// Genre is a single entry of the TMDB genre taxonomy.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Movie is one record of a popular-movies page as TMDB returns it.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	GenreIDs    []int   `json:"genre_ids"`
	VoteAverage float64 `json:"vote_average"`
	PosterPath  string  `json:"poster_path"`
}

// Page is a paginated popular-movies response.
type Page struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Client defines the operations the sync pipeline needs from TMDB.
type Client interface {
	// Genres fetches the genre taxonomy as an id -> name mapping.
	Genres(ctx context.Context) (map[int]string, error)

	// PopularPage fetches one page of the popular-movies listing.
	PopularPage(ctx context.Context, page int) (*Page, error)
}
