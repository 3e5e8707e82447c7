package settings

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ariefcatur/hospitality-pos/internal/apperr"
	"github.com/ariefcatur/hospitality-pos/internal/postgres"
)

type Store struct{ DB postgres.Querier }

var _ Repository = (*Store)(nil)

func (s *Store) Get(ctx context.Context, key string) (Setting, error) {
	var st Setting
	err := s.DB.QueryRow(ctx, `SELECT key, value, updated_at FROM settings WHERE key=$1`, key).
		Scan(&st.Key, &st.Value, &st.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Setting{}, apperr.NotFound("setting", key)
	}
	if err != nil {
		return Setting{}, apperr.Internal("get setting", err)
	}
	return st, nil
}

func (s *Store) List(ctx context.Context) ([]Setting, error) {
	rows, err := s.DB.Query(ctx, `SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, apperr.Internal("list settings", err)
	}
	defer rows.Close()

	out := []Setting{}
	for rows.Next() {
		var st Setting
		if err := rows.Scan(&st.Key, &st.Value, &st.UpdatedAt); err != nil {
			return nil, apperr.Internal("scan setting", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("list settings", err)
	}
	return out, nil
}

func (s *Store) Put(ctx context.Context, key, value string, at time.Time) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO settings(key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value, at)
	if err != nil {
		return apperr.Internal("put setting", err)
	}
	return nil
}
