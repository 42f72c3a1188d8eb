// Package cache — необязательный read-through кэш активных access-образов в Redis.
//
// Источник истины — хранилище. Ротация перезаписывает ключ новым образом (Set),
// а промах проверки access-токена заполняет только пустой ключ (SetIfAbsent, SETNX),
// поэтому образ, прочитанный до ротации, не может вытеснить записанный после неё.
// Отзыв образа удаляет ключ (Invalidate).
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ImageCache — минимальный контракт кэша access-образов.
type ImageCache interface {
	// Get возвращает образ и признак его наличия в кэше.
	Get(ctx context.Context, userID uuid.UUID) (string, bool, error)
	// Set сохраняет образ с TTL кэша, перезаписывая прежний.
	Set(ctx context.Context, userID uuid.UUID, image string) error
	// SetIfAbsent сохраняет образ, только если ключа ещё нет; true — записано.
	SetIfAbsent(ctx context.Context, userID uuid.UUID, image string) (bool, error)
	// Invalidate удаляет образ пользователя из кэша.
	Invalidate(ctx context.Context, userID uuid.UUID) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisCache struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0)
// и проверяет соединение. Пустой prefix заменяется на "auth:ai:", ttl <= 0 — на минуту.
func NewRedisCache(ctx context.Context, redisURL, prefix string, ttl time.Duration) (ImageCache, error) {
	const op = "cache.NewRedisCache"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewWithClient(rdb, prefix, ttl), nil
}

// NewWithClient оборачивает готовый клиент.
func NewWithClient(rdb redis.UniversalClient, prefix string, ttl time.Duration) ImageCache {
	if prefix == "" {
		prefix = "auth:ai:"
	}

	if ttl <= 0 {
		ttl = time.Minute
	}

	return &redisCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *redisCache) key(userID uuid.UUID) string { return c.prefix + userID.String() }

func (c *redisCache) Get(ctx context.Context, userID uuid.UUID) (string, bool, error) {
	const op = "cache.Get"

	v, err := c.rdb.Get(ctx, c.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("%s: %w", op, err)
	}

	return v, true, nil
}

func (c *redisCache) Set(ctx context.Context, userID uuid.UUID, image string) error {
	const op = "cache.Set"

	if err := c.rdb.Set(ctx, c.key(userID), image, c.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *redisCache) SetIfAbsent(ctx context.Context, userID uuid.UUID, image string) (bool, error) {
	const op = "cache.SetIfAbsent"

	ok, err := c.rdb.SetNX(ctx, c.key(userID), image, c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

func (c *redisCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	const op = "cache.Invalidate"

	if err := c.rdb.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *redisCache) Close() error {
	return c.rdb.Close()
}
