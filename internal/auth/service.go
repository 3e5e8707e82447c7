package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ariefcatur/hospitality-pos/internal/apperr"
)

// Credential is what login needs to know about a staff account.
type Credential struct {
	UserID       string
	Name         string
	PasswordHash string
	Role         Role
	Active       bool
}

// CredentialFinder is satisfied by *staff.Store.
type CredentialFinder interface {
	FindCredential(ctx context.Context, email string) (Credential, error)
}

type Service struct {
	Users    CredentialFinder
	Sessions *Sessions
	Log      zerolog.Logger
}

var errBadLogin = &apperr.Error{Kind: apperr.KindForbidden, Message: "invalid email or password"}

// Login checks the password against the stored bcrypt hash and opens a session.
// Unknown email, inactive account and wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Session{}, apperr.Validation("email", "email is required")
	}
	if password == "" {
		return Session{}, apperr.Validation("password", "password is required")
	}

	c, err := s.Users.FindCredential(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		s.Log.Info().Str("email", email).Msg("login rejected: unknown email")
		return Session{}, errBadLogin
	}
	if err != nil {
		return Session{}, err
	}
	if !c.Active || bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		s.Log.Info().Str("user_id", c.UserID).Msg("login rejected")
		return Session{}, errBadLogin
	}

	sess, err := s.Sessions.Create(ctx, c.UserID, c.Name, c.Role)
	if err != nil {
		return Session{}, err
	}
	s.Log.Info().Str("user_id", c.UserID).Str("role", string(c.Role)).Msg("login")
	return sess, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, token)
}

// HashPassword returns a bcrypt hash suitable for users.password_hash.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", apperr.Validation("password", "password must be at least 8 characters")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperr.Validation("password", err.Error())
	}
	return string(b), nil
}
