package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSetRatingUpsertsAndRecomputesAverage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id
		FROM movies
		WHERE tmdb_id = $1
		FOR UPDATE
	`)).
		WithArgs(int64(27205)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO ratings (user_id, movie_id, score)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, movie_id) DO UPDATE SET
			score = EXCLUDED.score,
			updated_at = now()
	`)).
		WithArgs(int64(42), int64(7), 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT AVG(score)::float8
		FROM ratings
		WHERE movie_id = $1
	`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(4.0))
	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE movies
		SET average_rating = $2, updated_at = now()
		WHERE id = $1
	`)).
		WithArgs(int64(7), 4.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	movieID, average, err := s.SetRating(context.Background(), 42, 27205, 4)
	if err != nil {
		t.Fatalf("SetRating error: %v", err)
	}
	if movieID != 7 {
		t.Fatalf("expected movie id 7, got %d", movieID)
	}
	if average != 4.0 {
		t.Fatalf("expected average 4.0, got %v", average)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSetRatingUnknownMovieRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT id\s+FROM movies\s+WHERE tmdb_id = \$1\s+FOR UPDATE`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, _, err = s.SetRating(context.Background(), 42, 404, 3)
	if !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("expected ErrMovieNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSetRatingFailedWriteRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT id\s+FROM movies\s+WHERE tmdb_id = \$1\s+FOR UPDATE`).
		WithArgs(int64(27205)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec("INSERT INTO ratings").
		WithArgs(int64(42), int64(7), 4).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, _, err = s.SetRating(context.Background(), 42, 27205, 4)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	// The rating write and the average recompute are one atomic unit; a
	// failure mid-way must leave no partial state behind.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
