// Package settings holds the few business parameters kept as key-value rows:
// the tax rate applied at invoicing and the USD exchange rate used by rental
// payments.
package settings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/hospitality-pos/internal/apperr"
	"github.com/ariefcatur/hospitality-pos/internal/redisx"
)

const (
	KeyTaxRate      = "tax_rate"
	KeyExchangeRate = "usd_exchange_rate"
)

var defaults = map[string]decimal.Decimal{
	KeyTaxRate:      decimal.RequireFromString("0.18"),
	KeyExchangeRate: decimal.NewFromInt(1),
}

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Repository interface {
	Get(ctx context.Context, key string) (Setting, error)
	List(ctx context.Context) ([]Setting, error)
	Put(ctx context.Context, key, value string, at time.Time) error
}

type Service struct {
	Repo  Repository
	Cache redis.Cmdable // optional
	Log   zerolog.Logger
	Now   func() time.Time
}

// TaxRate is the fraction applied to an invoice subtotal.
func (s *Service) TaxRate(ctx context.Context) (decimal.Decimal, error) {
	return s.decimal(ctx, KeyTaxRate)
}

// ExchangeRate converts one USD into local currency.
func (s *Service) ExchangeRate(ctx context.Context) (decimal.Decimal, error) {
	return s.decimal(ctx, KeyExchangeRate)
}

// List returns every known key, filling in defaults for keys never stored.
func (s *Service) List(ctx context.Context) ([]Setting, error) {
	stored, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	out := make([]Setting, 0, len(defaults))
	for _, st := range stored {
		if _, known := defaults[st.Key]; !known {
			continue
		}
		seen[st.Key] = true
		out = append(out, st)
	}
	for key, def := range defaults {
		if !seen[key] {
			out = append(out, Setting{Key: key, Value: def.String()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Set validates and stores a value, then drops the cached copy.
func (s *Service) Set(ctx context.Context, key, raw string) (Setting, error) {
	key = strings.TrimSpace(key)
	if _, known := defaults[key]; !known {
		return Setting{}, apperr.Validation("key", fmt.Sprintf("unknown setting %q", key))
	}
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return Setting{}, apperr.Validation("value", "value must be a decimal number")
	}
	switch key {
	case KeyTaxRate:
		if v.IsNegative() || v.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return Setting{}, apperr.Validation("value", "tax_rate must be between 0 and 1")
		}
	case KeyExchangeRate:
		if !v.IsPositive() {
			return Setting{}, apperr.Validation("value", "usd_exchange_rate must be positive")
		}
	}

	st := Setting{Key: key, Value: v.String(), UpdatedAt: s.now()}
	if err := s.Repo.Put(ctx, st.Key, st.Value, st.UpdatedAt); err != nil {
		return Setting{}, err
	}
	if s.Cache != nil {
		if err := s.Cache.Del(ctx, fmt.Sprintf(redisx.KeySetting, key)).Err(); err != nil {
			s.Log.Warn().Err(err).Str("key", key).Msg("drop cached setting")
		}
	}
	s.Log.Info().Str("key", key).Str("value", st.Value).Msg("setting updated")
	return st, nil
}

// decimal reads through the cache. A missing or unparsable row yields the
// default; only a failing database is an error.
func (s *Service) decimal(ctx context.Context, key string) (decimal.Decimal, error) {
	def := defaults[key]
	cacheKey := fmt.Sprintf(redisx.KeySetting, key)

	if s.Cache != nil {
		raw, err := s.Cache.Get(ctx, cacheKey).Result()
		switch {
		case err == nil:
			if v, perr := decimal.NewFromString(raw); perr == nil {
				return v, nil
			}
		case !errors.Is(err, redis.Nil):
			s.Log.Warn().Err(err).Str("key", key).Msg("settings cache read")
		}
	}

	var raw string
	st, err := s.Repo.Get(ctx, key)
	switch {
	case err == nil:
		raw = st.Value
	case errors.Is(err, apperr.ErrNotFound):
		raw = def.String()
	default:
		return decimal.Zero, err
	}
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		s.Log.Warn().Str("key", key).Str("value", raw).Msg("unparsable setting, using default")
		v = def
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, cacheKey, v.String(), redisx.TTLSettingCache).Err(); err != nil {
			s.Log.Warn().Err(err).Str("key", key).Msg("settings cache write")
		}
	}
	return v, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
