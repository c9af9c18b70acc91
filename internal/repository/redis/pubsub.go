package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/kirinyoku/seatplan/internal/domain"
)

// PlanEvents broadcasts saved plans over a redis channel.
type PlanEvents struct {
	rdb     *redis.Client
	channel string
}

func NewPlanEvents(rdb *redis.Client) *PlanEvents {
	return &PlanEvents{
		rdb:     rdb,
		channel: ChannelPlanSaved(),
	}
}

func (p *PlanEvents) PublishPlanSaved(ctx context.Context, ev domain.PlanSaved) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

// Subscribe calls handler for every well-formed event until ctx is done.
func (p *PlanEvents) Subscribe(ctx context.Context, handler func(ctx context.Context, ev domain.PlanSaved)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev domain.PlanSaved
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.PlanID != "" {
				handler(ctx, ev)
			}
		}
	}
}
