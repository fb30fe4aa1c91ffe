package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/templestreet/forecast-app/internal/config"
	"github.com/templestreet/forecast-app/internal/domain"
)

const (
	latestAccuracyKey = "report:accuracy:latest"
	latestPlanKey     = "report:plan:latest"
	defaultReportTTL  = 5 * time.Minute
)

// ReportSummaryCache keeps the most recent run summaries warm so the
// dashboard endpoints never touch the database on the hot path.
type ReportSummaryCache interface {
	GetAccuracySummary(ctx context.Context) (*domain.AccuracySummary, bool, error)
	SetAccuracySummary(ctx context.Context, summary *domain.AccuracySummary) error
	GetPlanSummary(ctx context.Context) (*domain.PlanSummary, bool, error)
	SetPlanSummary(ctx context.Context, summary *domain.PlanSummary) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

// NewReportCache builds a redis-backed cache, or a no-op one when caching
// is disabled in config.
func NewReportCache(cfg config.CacheConfig) (ReportSummaryCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.ReportTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultReportTTL
	}

	return &redisReportCache{client: client, ttl: ttl}, nil
}

// NewNoopReportCache returns a cache that stores nothing.
func NewNoopReportCache() ReportSummaryCache {
	return &noopReportCache{}
}

func (c *redisReportCache) GetAccuracySummary(ctx context.Context) (*domain.AccuracySummary, bool, error) {
	var summary domain.AccuracySummary
	ok, err := c.get(ctx, latestAccuracyKey, &summary)
	if !ok || err != nil {
		return nil, false, err
	}
	return &summary, true, nil
}

func (c *redisReportCache) SetAccuracySummary(ctx context.Context, summary *domain.AccuracySummary) error {
	return c.set(ctx, latestAccuracyKey, summary)
}

func (c *redisReportCache) GetPlanSummary(ctx context.Context) (*domain.PlanSummary, bool, error) {
	var summary domain.PlanSummary
	ok, err := c.get(ctx, latestPlanKey, &summary)
	if !ok || err != nil {
		return nil, false, err
	}
	return &summary, true, nil
}

func (c *redisReportCache) SetPlanSummary(ctx context.Context, summary *domain.PlanSummary) error {
	return c.set(ctx, latestPlanKey, summary)
}

func (c *redisReportCache) get(ctx context.Context, key string, out interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("decode report summary cache: %w", err)
	}
	return true, nil
}

func (c *redisReportCache) set(ctx context.Context, key string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode report summary cache: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (noopReportCache) GetAccuracySummary(context.Context) (*domain.AccuracySummary, bool, error) {
	return nil, false, nil
}

func (noopReportCache) SetAccuracySummary(context.Context, *domain.AccuracySummary) error {
	return nil
}

func (noopReportCache) GetPlanSummary(context.Context) (*domain.PlanSummary, bool, error) {
	return nil, false, nil
}

func (noopReportCache) SetPlanSummary(context.Context, *domain.PlanSummary) error {
	return nil
}
