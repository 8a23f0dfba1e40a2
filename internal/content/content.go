// Package content — проверка существования комментируемого контента.
// Сам контент (стихи, авторы, цитаты) живёт вне сервиса; здесь только «есть/нет».
package content

import (
	"context"
	"log/slog"
	"time"

	"github.com/pribylovaa/poem-comments/internal/models"
	"github.com/pribylovaa/poem-comments/pkg/log"

	"github.com/redis/go-redis/v9"
)

// Checker — минимальный контракт проверки цели.
type Checker interface {
	// TargetExists сообщает, существует ли контент (targetId, targetType).
	TargetExists(ctx context.Context, target models.Target) (bool, error)
}

// Permissive считает существующей любую цель. Используется при content.check=false.
type Permissive struct{}

func (Permissive) TargetExists(context.Context, models.Target) (bool, error) { return true, nil }

// Cached — кэширующий декоратор над Checker в Redis.
// Положительный ответ хранится PositiveTTL, отрицательный — NegativeTTL.
// Ошибки Redis не фатальны: проверка уходит в next.
type Cached struct {
	next   Checker
	rdb    *redis.Client
	prefix string
	posTTL time.Duration
	negTTL time.Duration
}

// Options — параметры кэша.
type Options struct {
	Prefix      string
	PositiveTTL time.Duration
	NegativeTTL time.Duration
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0)
// и оборачивает next. Если prefix пустой — используется "comments:target:".
func NewRedisCache(redisURL string, next Checker, opts Options) (*Cached, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return NewCached(rdb, next, opts), nil
}

// NewCached оборачивает next готовым клиентом.
func NewCached(rdb *redis.Client, next Checker, opts Options) *Cached {
	if opts.Prefix == "" {
		opts.Prefix = "comments:target:"
	}

	return &Cached{
		next:   next,
		rdb:    rdb,
		prefix: opts.Prefix,
		posTTL: opts.PositiveTTL,
		negTTL: opts.NegativeTTL,
	}
}

func (c *Cached) key(t models.Target) string { return c.prefix + string(t.Type) + ":" + t.ID }

// TargetExists отвечает из кэша или спрашивает next и запоминает ответ.
func (c *Cached) TargetExists(ctx context.Context, target models.Target) (bool, error) {
	const op = "content/Cached.TargetExists"

	l := log.From(ctx).With("op", op, slog.String("target_type", string(target.Type)), slog.String("target_id", target.ID))

	v, err := c.rdb.Get(ctx, c.key(target)).Result()
	switch {
	case err == nil:
		return v == "1", nil
	case err != redis.Nil:
		l.Warn("target cache read failed", slog.String("err", err.Error()))
	}

	ok, err := c.next.TargetExists(ctx, target)
	if err != nil {
		return false, err
	}

	val, ttl := "0", c.negTTL
	if ok {
		val, ttl = "1", c.posTTL
	}

	if err := c.rdb.Set(ctx, c.key(target), val, ttl).Err(); err != nil {
		l.Warn("target cache write failed", slog.String("err", err.Error()))
	}

	return ok, nil
}

// Close закрывает клиент Redis.
func (c *Cached) Close() error { return c.rdb.Close() }
