package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Match(hash, password string) bool
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// UserService registers users and exchanges credentials for session tokens.
type UserService struct {
	repo      UserRepository
	passwords PasswordHasher
	tokens    TokenIssuer
	track     tracker
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user and returns a token for it.
func (s *UserService) Register(ctx context.Context, email, password, name string) (core.User, string, error) {
	email = normalizeEmail(email)
	errs := core.FieldErrors{}
	if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", errors.New("invalid email address"))
	}
	hash, err := s.passwords.Hash(password)
	errs.Add("password", err)
	if err := errs.Err(); err != nil {
		return core.User{}, "", err
	}

	u, err := s.repo.CreateUser(ctx, core.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		CreatedAt:    s.track.now().UTC(),
	})
	if errors.Is(err, core.ErrEmailTaken) {
		return core.User{}, "", &core.ConflictError{Message: core.ErrEmailTaken.Error()}
	}
	if err != nil {
		return core.User{}, "", fmt.Errorf("create user: %w", err)
	}
	slog.InfoContext(ctx, "User registered", log.FieldComponent, log.ComponentAuth, "user_id", u.ID)

	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return core.User{}, "", err
	}
	return u, tok, nil
}

// Login verifies credentials and returns a fresh token.
func (s *UserService) Login(ctx context.Context, email, password string) (core.User, string, error) {
	u, err := s.repo.UserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, "", core.ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, "", fmt.Errorf("find user: %w", err)
	}
	if !s.passwords.Match(u.PasswordHash, password) {
		slog.WarnContext(ctx, "Login rejected", log.FieldComponent, log.ComponentAuth, "user_id", u.ID)
		return core.User{}, "", core.ErrInvalidCredentials
	}
	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return core.User{}, "", err
	}
	return u, tok, nil
}
