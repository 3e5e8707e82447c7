// Package staff manages the user accounts that log in to the POS.
package staff

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ariefcatur/hospitality-pos/internal/apperr"
	"github.com/ariefcatur/hospitality-pos/internal/auth"
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository interface {
	Insert(ctx context.Context, u User, passwordHash string) error
	Get(ctx context.Context, id string) (User, error)
	List(ctx context.Context, role auth.Role) ([]User, error)
	Update(ctx context.Context, u User, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// SessionRevoker is satisfied by *auth.Sessions.
type SessionRevoker interface {
	RevokeUser(ctx context.Context, userID string) (int, error)
}

type Service struct {
	Repo     Repository
	Sessions SessionRevoker
	Log      zerolog.Logger
}

type NewUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUserInput changes only the fields that are set.
type UpdateUserInput struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Active   *bool   `json:"active"`
	Password *string `json:"password"`
}

func (s *Service) Create(ctx context.Context, in NewUserInput) (User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return User{}, apperr.Validation("name", "name is required")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return User{}, err
	}
	role, err := auth.ParseRole(in.Role)
	if err != nil {
		return User{}, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return User{}, err
	}

	u := User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      role,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Insert(ctx, u, hash); err != nil {
		return User{}, err
	}
	s.Log.Info().Str("user_id", u.ID).Str("role", string(role)).Msg("user created")
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.Repo.Get(ctx, id)
}

// List filters by role when role is non-empty.
func (s *Service) List(ctx context.Context, role string) ([]User, error) {
	var r auth.Role
	if strings.TrimSpace(role) != "" {
		var err error
		if r, err = auth.ParseRole(role); err != nil {
			return nil, err
		}
	}
	return s.Repo.List(ctx, r)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateUserInput) (User, error) {
	u, err := s.Repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if in.Name != nil {
		if u.Name = strings.TrimSpace(*in.Name); u.Name == "" {
			return User{}, apperr.Validation("name", "name must not be empty")
		}
	}
	before := u
	if in.Role != nil {
		if u.Role, err = auth.ParseRole(*in.Role); err != nil {
			return User{}, err
		}
	}
	if in.Active != nil {
		u.Active = *in.Active
	}
	var hash string
	if in.Password != nil {
		if hash, err = auth.HashPassword(*in.Password); err != nil {
			return User{}, err
		}
	}
	if err := s.Repo.Update(ctx, u, hash); err != nil {
		return User{}, err
	}
	// Sessions carry the role they were issued with.
	if u.Role != before.Role || u.Active != before.Active || hash != "" {
		if err := s.revoke(ctx, id); err != nil {
			return User{}, err
		}
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.revoke(ctx, id); err != nil {
		return err
	}
	s.Log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

func (s *Service) revoke(ctx context.Context, userID string) error {
	if s.Sessions == nil {
		return nil
	}
	n, err := s.Sessions.RevokeUser(ctx, userID)
	if err != nil {
		return err
	}
	s.Log.Info().Str("user_id", userID).Int("sessions", n).Msg("sessions revoked")
	return nil
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil || addr.Name != "" {
		return "", apperr.Validation("email", "email is not valid")
	}
	return strings.ToLower(addr.Address), nil
}
