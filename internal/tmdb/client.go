package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the production TMDB API root.
const DefaultBaseURL = "https://api.themoviedb.org/3"

// APIError reports a non-success response from TMDB.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tmdb api error: %s - %s", e.Status, e.Body)
}

// HTTPClient talks to the TMDB REST API. Requests are not retried and not
// rate limited; callers serialize page fetches.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient creates a TMDB client for the given API root and key.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type genreListResponse struct {
	Genres []Genre `json:"genres"`
}

// Genres fetches the movie genre taxonomy.
func (c *HTTPClient) Genres(ctx context.Context) (map[int]string, error) {
	var result genreListResponse
	if err := c.doRequest(ctx, "genre/movie/list", nil, &result); err != nil {
		return nil, err
	}

	genres := make(map[int]string, len(result.Genres))
	for _, g := range result.Genres {
		genres[g.ID] = g.Name
	}
	return genres, nil
}

// PopularPage fetches one page of the popular-movies listing.
func (c *HTTPClient) PopularPage(ctx context.Context, page int) (*Page, error) {
	params := url.Values{
		"page":     []string{fmt.Sprintf("%d", page)},
		"language": []string{"en-US"},
	}

	var result Page
	if err := c.doRequest(ctx, "movie/popular", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// doRequest performs an authenticated GET against the TMDB API.
func (c *HTTPClient) doRequest(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	apiURL := c.baseURL + "/" + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
