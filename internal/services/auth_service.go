package services

import (
	"context"
	"database/sql"
	"errors"

	"earnhub/internal/domain"
	"earnhub/internal/repos"

	"golang.org/x/crypto/bcrypt"
)

var ErrBadCreds = errors.New("invalid email or password")

type AuthService struct {
	Users *repos.UserRepo
}

// Verify checks credentials without touching any session.
func (s *AuthService) Verify(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*domain.User, error) {
	u, err := s.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.Users.BindSession(ctx, sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	return s.Users.UnbindSession(ctx, sid)
}

// Me returns the signed-in user, or nil when the session is anonymous.
func (s *AuthService) Me(ctx context.Context, sid string) (*domain.User, error) {
	if sid == "" {
		return nil, nil
	}
	u, err := s.Users.SessionUser(ctx, sid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (s *AuthService) IsAuthenticated(ctx context.Context, sid string) bool {
	u, err := s.Me(ctx, sid)
	return err == nil && u != nil
}
