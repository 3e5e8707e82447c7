package reports

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/hospitality-pos/internal/kafka"
	"github.com/ariefcatur/hospitality-pos/internal/orders"
	"github.com/ariefcatur/hospitality-pos/internal/redisx"
)

// ProjectorTopics are the topics the projector subscribes to.
var ProjectorTopics = []string{orders.TopicOrderCreated, orders.TopicOrderInvoiced, orders.TopicStockMoved}

// Counters hold fixed-point integers so concurrent increments stay exact.
const (
	centsExp = 2
	milliExp = 3
)

// Projector folds domain events into the per-day Redis counters read by
// LiveCounters. Each event id is applied at most once.
type Projector struct {
	Redis redis.Cmdable
	Log   zerolog.Logger
	Name  string
}

// Handle is a kafka.Handler.
func (p *Projector) Handle(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// A malformed message will never decode; commit it and move on.
		p.Log.Error().Err(err).Str("topic", m.Topic).Int64("offset", m.Offset).Msg("drop undecodable event")
		return nil
	}

	dedup := fmt.Sprintf(redisx.KeyDedup, p.name(), env.EventID)
	fresh, err := redisx.Claim(ctx, p.Redis, dedup, redisx.TTLDedup)
	if err != nil {
		return err
	}
	if !fresh {
		p.Log.Debug().Str("event_id", env.EventID).Msg("duplicate event")
		return nil
	}

	if err := p.apply(ctx, env); err != nil {
		// Release the claim so the retried message is applied.
		_ = p.Redis.Del(ctx, dedup).Err()
		return err
	}
	return nil
}

func (p *Projector) apply(ctx context.Context, env orders.Envelope) error {
	day := env.OccurredAt.UTC().Format(DayLayout)

	switch env.EventType {
	case orders.EventOrderCreated:
		pl, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		key := fmt.Sprintf(redisx.KeySalesUnits, day)
		_, err = p.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, l := range pl.Lines {
				pipe.ZIncrBy(ctx, key, float64(l.Quantity), l.ProductID)
			}
			pipe.Expire(ctx, key, redisx.TTLSalesDay)
			return nil
		})
		return err

	case orders.EventOrderInvoiced:
		pl, err := kafkax.UnwrapPayload[orders.OrderInvoicedPayload](env.Payload)
		if err != nil {
			return err
		}
		rev := fmt.Sprintf(redisx.KeySalesRevenue, day)
		cnt := fmt.Sprintf(redisx.KeySalesInvoices, day)
		_, err = p.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.IncrBy(ctx, rev, pl.Total.Shift(centsExp).Round(0).IntPart())
			pipe.Incr(ctx, cnt)
			pipe.Expire(ctx, rev, redisx.TTLSalesDay)
			pipe.Expire(ctx, cnt, redisx.TTLSalesDay)
			return nil
		})
		return err

	case orders.EventStockMoved:
		pl, err := kafkax.UnwrapPayload[orders.StockMovedPayload](env.Payload)
		if err != nil {
			return err
		}
		key := fmt.Sprintf(redisx.KeyStockFlow, day)
		_, err = p.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HIncrBy(ctx, key, string(pl.Direction), pl.Quantity.Shift(milliExp).Round(0).IntPart())
			pipe.Expire(ctx, key, redisx.TTLSalesDay)
			return nil
		})
		return err
	}

	p.Log.Debug().Str("event_type", env.EventType).Msg("ignored event")
	return nil
}

func (p *Projector) name() string {
	if p.Name == "" {
		return "projector"
	}
	return p.Name
}
