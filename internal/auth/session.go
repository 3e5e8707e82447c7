package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/hospitality-pos/internal/apperr"
	"github.com/ariefcatur/hospitality-pos/internal/redisx"
)

type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Sessions keeps login sessions in Redis hashes that expire on their own.
type Sessions struct {
	Redis redis.Cmdable
	TTL   time.Duration
}

func (s *Sessions) Create(ctx context.Context, userID, name string, role Role) (Session, error) {
	sess := Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Role:      role,
		ExpiresAt: time.Now().Add(s.TTL).UTC(),
	}
	key := fmt.Sprintf(redisx.KeySession, sess.Token)
	index := fmt.Sprintf(redisx.KeyUserSessions, userID)
	_, err := s.Redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, "user_id", userID, "name", name, "role", string(role))
		p.Expire(ctx, key, s.TTL)
		// The index outlives every token it lists.
		p.SAdd(ctx, index, sess.Token)
		p.Expire(ctx, index, s.TTL)
		return nil
	})
	if err != nil {
		return Session{}, apperr.Internal("store session", err)
	}
	return sess, nil
}

// Get returns NotFound for unknown or expired tokens.
func (s *Sessions) Get(ctx context.Context, token string) (Session, error) {
	key := fmt.Sprintf(redisx.KeySession, token)
	fields, err := s.Redis.HGetAll(ctx, key).Result()
	if err != nil {
		return Session{}, apperr.Internal("load session", err)
	}
	if len(fields) == 0 {
		return Session{}, apperr.NotFound("session", token)
	}
	role, err := ParseRole(fields["role"])
	if err != nil {
		return Session{}, apperr.NotFound("session", token)
	}
	ttl, err := s.Redis.TTL(ctx, key).Result()
	if err != nil {
		return Session{}, apperr.Internal("load session", err)
	}
	return Session{
		Token:     token,
		UserID:    fields["user_id"],
		Name:      fields["name"],
		Role:      role,
		ExpiresAt: time.Now().Add(ttl).UTC(),
	}, nil
}

func (s *Sessions) Delete(ctx context.Context, token string) error {
	key := fmt.Sprintf(redisx.KeySession, token)
	userID, err := s.Redis.HGet(ctx, key, "user_id").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return apperr.Internal("delete session", err)
	}
	_, err = s.Redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		if userID != "" {
			p.SRem(ctx, fmt.Sprintf(redisx.KeyUserSessions, userID), token)
		}
		return nil
	})
	if err != nil {
		return apperr.Internal("delete session", err)
	}
	return nil
}

// RevokeUser ends every session issued to userID. It returns how many were live.
func (s *Sessions) RevokeUser(ctx context.Context, userID string) (int, error) {
	index := fmt.Sprintf(redisx.KeyUserSessions, userID)
	tokens, err := s.Redis.SMembers(ctx, index).Result()
	if err != nil {
		return 0, apperr.Internal("list user sessions", err)
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, fmt.Sprintf(redisx.KeySession, t))
	}
	var live *redis.IntCmd
	_, err = s.Redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if len(keys) > 0 {
			live = p.Del(ctx, keys...)
		}
		p.Del(ctx, index)
		return nil
	})
	if err != nil {
		return 0, apperr.Internal("revoke user sessions", err)
	}
	if live == nil {
		return 0, nil
	}
	return int(live.Val()), nil
}
