package cache

import (
	"context"
	"delivery-allocation-service/internal/platform/obs"
	"delivery-allocation-service/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const AllocationCompletedChannel = "allocation.completed"

// RedisEventPublisher announces stored runs over Redis Pub/Sub.
type RedisEventPublisher struct {
	RDB     *redis.Client
	Channel string
}

func NewRedisEventPublisher(rdb *redis.Client) *RedisEventPublisher {
	return &RedisEventPublisher{RDB: rdb, Channel: AllocationCompletedChannel}
}

func (p *RedisEventPublisher) PublishAllocationCompleted(ctx context.Context, summary ports.RunSummary) (err error) {
	defer obs.Time(ctx, "allocation.events.Publish")(&err)

	if p.RDB == nil {
		return errors.New("event publisher: redis client is nil")
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("publish allocation completed: encode: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := p.RDB.Publish(ctx, p.Channel, data).Err(); err != nil {
		return fmt.Errorf("publish allocation completed run_id=%s: %w", summary.RunID, err)
	}

	return nil
}
