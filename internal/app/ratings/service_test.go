package ratings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"moviemirror/internal/store"
)

type memStore struct {
	tmdbID  int64
	movieID int64

	mu      sync.Mutex
	ratings map[int64]int
	average float64
	calls   int
}

func newMemStore(tmdbID, movieID int64) *memStore {
	return &memStore{tmdbID: tmdbID, movieID: movieID, ratings: map[int64]int{}}
}

// SetRating deliberately applies a snapshot-overwrite: it copies the rating
// set, widens the race window, then writes the whole set back. Without the
// service's per-movie serialization, concurrent writers would clobber each
// other's scores.
func (m *memStore) SetRating(ctx context.Context, userID, tmdbID int64, score int) (int64, float64, error) {
	if tmdbID != m.tmdbID {
		return 0, 0, store.ErrMovieNotFound
	}

	m.mu.Lock()
	m.calls++
	snapshot := make(map[int64]int, len(m.ratings)+1)
	for id, sc := range m.ratings {
		snapshot[id] = sc
	}
	m.mu.Unlock()

	snapshot[userID] = score
	time.Sleep(time.Millisecond)

	sum := 0
	for _, sc := range snapshot {
		sum += sc
	}
	average := float64(sum) / float64(len(snapshot))

	m.mu.Lock()
	m.ratings = snapshot
	m.average = average
	m.mu.Unlock()

	return m.movieID, average, nil
}

func TestSetRatingRejectsOutOfRangeScores(t *testing.T) {
	st := newMemStore(27205, 7)
	svc := New(st)

	for _, score := range []int{-1, 0, 6, 100} {
		t.Run(fmt.Sprintf("score=%d", score), func(t *testing.T) {
			_, err := svc.SetRating(context.Background(), 42, 27205, score)
			if !errors.Is(err, ErrInvalidScore) {
				t.Fatalf("expected ErrInvalidScore, got %v", err)
			}
		})
	}

	if st.calls != 0 {
		t.Fatalf("invalid scores must not reach the store, got %d calls", st.calls)
	}
}

func TestSetRatingAcceptsBoundaryScores(t *testing.T) {
	st := newMemStore(27205, 7)
	svc := New(st)

	for _, score := range []int{1, 5} {
		if _, err := svc.SetRating(context.Background(), int64(score), 27205, score); err != nil {
			t.Fatalf("score %d rejected: %v", score, err)
		}
	}
}

func TestSetRatingUnknownMovie(t *testing.T) {
	svc := New(newMemStore(27205, 7))

	_, err := svc.SetRating(context.Background(), 42, 404, 3)
	if !errors.Is(err, store.ErrMovieNotFound) {
		t.Fatalf("expected ErrMovieNotFound, got %v", err)
	}
}

func TestSetRatingOverwriteRecomputesAverage(t *testing.T) {
	st := newMemStore(27205, 7)
	svc := New(st)

	scores := map[int64]int{1: 3, 2: 5, 3: 4}
	for user, score := range scores {
		if _, err := svc.SetRating(context.Background(), user, 27205, score); err != nil {
			t.Fatalf("SetRating error: %v", err)
		}
	}

	if st.average != 4.0 {
		t.Fatalf("expected average 4.0, got %v", st.average)
	}

	// Overwriting one user's score keeps a single rating per user and
	// shifts the mean accordingly.
	result, err := svc.SetRating(context.Background(), 1, 27205, 5)
	if err != nil {
		t.Fatalf("SetRating error: %v", err)
	}

	if len(st.ratings) != 3 {
		t.Fatalf("expected 3 ratings after overwrite, got %d", len(st.ratings))
	}
	want := 14.0 / 3.0
	if diff := result.AverageRating - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected average %v, got %v", want, result.AverageRating)
	}
}

func TestConcurrentSetRatingLosesNoUpdate(t *testing.T) {
	const writers = 16

	st := newMemStore(27205, 7)
	svc := New(st)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(user int64) {
			defer wg.Done()
			score := int(user%5) + 1
			if _, err := svc.SetRating(context.Background(), user, 27205, score); err != nil {
				t.Errorf("SetRating user %d: %v", user, err)
			}
		}(int64(i))
	}
	wg.Wait()

	if len(st.ratings) != writers {
		t.Fatalf("expected %d ratings, got %d (lost update)", writers, len(st.ratings))
	}

	sum := 0
	for user := int64(0); user < writers; user++ {
		score, ok := st.ratings[user]
		if !ok {
			t.Fatalf("rating for user %d lost", user)
		}
		if score != int(user%5)+1 {
			t.Fatalf("rating for user %d corrupted: %d", user, score)
		}
		sum += score
	}

	want := float64(sum) / float64(writers)
	if st.average != want {
		t.Fatalf("expected final average %v, got %v", want, st.average)
	}
}
