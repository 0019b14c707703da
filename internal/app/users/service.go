package users

import (
	"context"

	"moviemirror/internal/store"
)

// Store defines the persistence hooks for account workflows.
type Store interface {
	CreateUser(ctx context.Context, email, password string) (store.User, error)
	Authenticate(ctx context.Context, email, password string) (store.User, error)
	UserByID(ctx context.Context, id int64) (store.User, error)
}

// TokenIssuer mints bearer tokens for authenticated users.
type TokenIssuer interface {
	IssueToken(userID int64) (string, error)
}

// Service coordinates signup and login.
type Service struct {
	store  Store
	tokens TokenIssuer
}

// New constructs a users Service.
func New(st Store, tokens TokenIssuer) *Service {
	return &Service{store: st, tokens: tokens}
}

// Signup registers a new account.
func (s *Service) Signup(ctx context.Context, email, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.store.CreateUser(ctx, email, password)
	return err
}

// Login validates credentials and returns a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	user, err := s.store.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	return s.tokens.IssueToken(user.ID)
}

// Profile returns the account for an authenticated user id.
func (s *Service) Profile(ctx context.Context, userID int64) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	return s.store.UserByID(ctx, userID)
}
