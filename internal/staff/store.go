package staff

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ariefcatur/hospitality-pos/internal/apperr"
	"github.com/ariefcatur/hospitality-pos/internal/auth"
	"github.com/ariefcatur/hospitality-pos/internal/postgres"
)

type Store struct{ DB postgres.Querier }

var (
	_ Repository            = (*Store)(nil)
	_ auth.CredentialFinder = (*Store)(nil)
)

const userColumns = `id, name, email, role, active, created_at`

func (s *Store) Insert(ctx context.Context, u User, passwordHash string) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO users(id, name, email, password_hash, role, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Name, u.Email, passwordHash, string(u.Role), u.Active, u.CreatedAt)
	if postgres.IsUniqueViolation(err) {
		return apperr.Validation("email", "email already in use")
	}
	if err != nil {
		return apperr.Internal("insert user", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (User, error) {
	u, err := scanUser(s.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, apperr.NotFound("user", id)
	}
	if err != nil {
		return User{}, apperr.Internal("get user", err)
	}
	return u, nil
}

func (s *Store) List(ctx context.Context, role auth.Role) ([]User, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE ($1 = '' OR role = $1)
		ORDER BY name`, string(role))
	if err != nil {
		return nil, apperr.Internal("list users", err)
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperr.Internal("scan user", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("list users", err)
	}
	return out, nil
}

// Update writes name, role and active flag; a non-empty hash replaces the password.
func (s *Store) Update(ctx context.Context, u User, passwordHash string) error {
	ct, err := s.DB.Exec(ctx, `
		UPDATE users SET name=$2, role=$3, active=$4,
			password_hash = CASE WHEN $5 = '' THEN password_hash ELSE $5 END
		WHERE id=$1`,
		u.ID, u.Name, string(u.Role), u.Active, passwordHash)
	if err != nil {
		return apperr.Internal("update user", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("user", u.ID)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return apperr.Internal("delete user", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("user", id)
	}
	return nil
}

func (s *Store) FindCredential(ctx context.Context, email string) (auth.Credential, error) {
	var (
		c    auth.Credential
		role string
	)
	err := s.DB.QueryRow(ctx, `
		SELECT id, name, password_hash, role, active FROM users WHERE lower(email)=lower($1)`, email).
		Scan(&c.UserID, &c.Name, &c.PasswordHash, &role, &c.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Credential{}, apperr.NotFound("user", email)
	}
	if err != nil {
		return auth.Credential{}, apperr.Internal("find credential", err)
	}
	if c.Role, err = auth.ParseRole(role); err != nil {
		return auth.Credential{}, apperr.Internal("stored role", err)
	}
	return c, nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		u    User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.Active, &u.CreatedAt); err != nil {
		return User{}, err
	}
	// Rows written before role normalization still parse.
	if r, err := auth.ParseRole(role); err == nil {
		u.Role = r
	} else {
		u.Role = auth.Role(role)
	}
	return u, nil
}
