// Package cache хранит в Redis счётчики беременностей пользователей.
package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/equigest/internal/config"
	"github.com/magabrotheeeer/equigest/internal/models"
)

// Cache обёртка над клиентом Redis.
type Cache struct {
	Db *redis.Client
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// Close закрывает клиент.
func (c *Cache) Close() error {
	return c.Db.Close()
}

func countersKey(userUID string) string {
	return "user:" + userUID
}

// AdjustCounters атомарно (одним MULTI) применяет приращения к счётчикам пользователя.
func (c *Cache) AdjustCounters(ctx context.Context, userUID string, deltas map[string]int64) error {
	const op = "cache.AdjustCounters"
	if len(deltas) == 0 {
		return nil
	}

	key := countersKey(userUID)
	_, err := c.Db.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for name, delta := range deltas {
			pipe.HIncrBy(ctx, key, name, delta)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Counters возвращает все счётчики пользователя. Отсутствующие счётчики равны нулю.
func (c *Cache) Counters(ctx context.Context, userUID string) (map[string]int64, error) {
	const op = "cache.Counters"

	raw, err := c.Db.HGetAll(ctx, countersKey(userUID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	counters := map[string]int64{
		models.CounterTotal:      0,
		models.CounterInProgress: 0,
		models.CounterSuccessful: 0,
		models.CounterFailed:     0,
	}
	for name, value := range raw {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: counter %s: %w", op, name, err)
		}
		counters[name] = n
	}
	return counters, nil
}
