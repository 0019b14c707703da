package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateUserNormalizesEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (email, password_hash)")).
		WithArgs("a@b.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	user, err := New(db).CreateUser(context.Background(), "  A@B.com ", "hunter22")
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	if user.ID != 1 || user.Email != "a@b.com" {
		t.Fatalf("unexpected user: %#v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateUserRejectsEmptyInput(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	s := New(db)
	if _, err := s.CreateUser(context.Background(), "", "hunter22"); err == nil {
		t.Fatal("expected error for empty email")
	}
	if _, err := s.CreateUser(context.Background(), "a@b.com", ""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (email, password_hash)")).
		WithArgs("a@b.com", sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	if _, err := New(db).CreateUser(context.Background(), "a@b.com", "hunter22"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	userQuery := regexp.QuoteMeta("SELECT id, password_hash")

	t.Run("valid credentials", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock: %v", err)
		}
		defer db.Close()

		mock.ExpectQuery(userQuery).
			WithArgs("a@b.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow(int64(9), hash))

		user, err := New(db).Authenticate(context.Background(), "a@b.com", "hunter22")
		if err != nil {
			t.Fatalf("Authenticate error: %v", err)
		}
		if user.ID != 9 {
			t.Fatalf("expected user 9, got %d", user.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock: %v", err)
		}
		defer db.Close()

		mock.ExpectQuery(userQuery).
			WithArgs("a@b.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow(int64(9), hash))

		if _, err := New(db).Authenticate(context.Background(), "a@b.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock: %v", err)
		}
		defer db.Close()

		mock.ExpectQuery(userQuery).
			WithArgs("nobody@b.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}))

		if _, err := New(db).Authenticate(context.Background(), "nobody@b.com", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestUserByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email")).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	if _, err := New(db).UserByID(context.Background(), 404); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
