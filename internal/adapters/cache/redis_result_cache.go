package cache

import (
	"context"
	"delivery-allocation-service/internal/domain"
	"delivery-allocation-service/internal/platform/obs"
	"delivery-allocation-service/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	LatestResultKey = "allocation:latest"
	DefaultTTL      = 24 * time.Hour
)

// RedisResultCache keeps the latest allocation run under a single key.
type RedisResultCache struct {
	RDB *redis.Client
	Key string
	TTL time.Duration
}

func NewRedisResultCache(rdb *redis.Client, ttl time.Duration) *RedisResultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisResultCache{RDB: rdb, Key: LatestResultKey, TTL: ttl}
}

type cachedAllocation struct {
	AgentID       int     `json:"agent_id"`
	Orders        []int   `json:"orders"`
	TotalDistance float64 `json:"total_distance"`
	TotalTime     float64 `json:"total_time"`
	EstimatedPay  float64 `json:"estimated_pay"`
}

type cachedRun struct {
	RunID            string             `json:"run_id"`
	RunAt            time.Time          `json:"run_at"`
	AgentAllocations []cachedAllocation `json:"agent_allocations"`
	AllocatedOrders  []int              `json:"allocated_orders"`
	PostponedOrders  []int              `json:"postponed_orders"`
	TotalCost        float64            `json:"total_cost"`
}

// Get returns ports.ErrNotFound when the key is absent or expired.
func (c *RedisResultCache) Get(ctx context.Context) (_ domain.AllocationRun, err error) {
	defer obs.Time(ctx, "allocation.cache.Get")(&err)

	if c.RDB == nil {
		return domain.AllocationRun{}, errors.New("result cache: redis client is nil")
	}

	raw, err := c.RDB.Get(ctx, c.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.AllocationRun{}, ports.ErrNotFound
	}
	if err != nil {
		return domain.AllocationRun{}, fmt.Errorf("get cached result: %w", err)
	}

	var cr cachedRun
	if err := json.Unmarshal(raw, &cr); err != nil {
		return domain.AllocationRun{}, fmt.Errorf("get cached result: decode: %w", err)
	}

	res := domain.AllocationResult{
		AgentAllocations: make([]domain.AgentAllocation, 0, len(cr.AgentAllocations)),
		AllocatedOrders:  nonNil(cr.AllocatedOrders),
		PostponedOrders:  nonNil(cr.PostponedOrders),
		TotalCost:        cr.TotalCost,
	}
	for _, a := range cr.AgentAllocations {
		res.AgentAllocations = append(res.AgentAllocations, domain.AgentAllocation{
			AgentID:         a.AgentID,
			OrderIDs:        nonNil(a.Orders),
			TotalDistanceKm: a.TotalDistance,
			TotalTimeMin:    a.TotalTime,
			EstimatedPay:    a.EstimatedPay,
		})
	}

	return domain.AllocationRun{RunID: cr.RunID, RunAt: cr.RunAt, Result: res}, nil
}

func (c *RedisResultCache) Put(ctx context.Context, run domain.AllocationRun) (err error) {
	defer obs.Time(ctx, "allocation.cache.Put")(&err)

	if c.RDB == nil {
		return errors.New("result cache: redis client is nil")
	}

	result := run.Result
	cr := cachedRun{
		RunID:            run.RunID,
		RunAt:            run.RunAt.UTC(),
		AgentAllocations: make([]cachedAllocation, 0, len(result.AgentAllocations)),
		AllocatedOrders:  nonNil(result.AllocatedOrders),
		PostponedOrders:  nonNil(result.PostponedOrders),
		TotalCost:        result.TotalCost,
	}
	for _, a := range result.AgentAllocations {
		cr.AgentAllocations = append(cr.AgentAllocations, cachedAllocation{
			AgentID:       a.AgentID,
			Orders:        nonNil(a.OrderIDs),
			TotalDistance: a.TotalDistanceKm,
			TotalTime:     a.TotalTimeMin,
			EstimatedPay:  a.EstimatedPay,
		})
	}

	data, err := json.Marshal(cr)
	if err != nil {
		return fmt.Errorf("put cached result: encode: %w", err)
	}

	if err := c.RDB.Set(ctx, c.Key, data, c.TTL).Err(); err != nil {
		return fmt.Errorf("put cached result: %w", err)
	}

	return nil
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
