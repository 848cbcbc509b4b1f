// Package rediscache caches user lookups in Redis in front of another
// store.UserResolver. Users never change type, so entries only expire.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"interviewcal/internal/domain"
	"interviewcal/internal/store"
)

const (
	keyPrefix  = "interviewcal:user:"
	DefaultTTL = 10 * time.Minute
)

// NewClient builds a client from a URL such as redis://localhost:6379/0 and
// checks that the server answers.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, errors.New("empty redis url")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

type cachedUser struct {
	ID        string    `msgpack:"id"`
	Name      string    `msgpack:"name"`
	Type      string    `msgpack:"type"`
	CreatedAt time.Time `msgpack:"created_at"`
}

type UserCache struct {
	client redis.Cmdable
	next   store.UserResolver
	ttl    time.Duration
	log    *slog.Logger
}

func NewUserCache(client redis.Cmdable, next store.UserResolver, ttl time.Duration, log *slog.Logger) *UserCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &UserCache{
		client: client,
		next:   next,
		ttl:    ttl,
		log:    log.With(slog.String("component", "rediscache.users")),
	}
}

// Resolve serves from Redis when possible. Redis failures are logged and the
// lookup falls through to the wrapped resolver.
func (c *UserCache) Resolve(ctx context.Context, id uuid.UUID, expected domain.UserType) (domain.User, error) {
	key := keyPrefix + id.String()

	if u, ok := c.get(ctx, key); ok {
		if !u.Type.Matches(expected) {
			return domain.User{}, store.ErrNotFound
		}
		return u, nil
	}

	u, err := c.next.Resolve(ctx, id, domain.UserTypeAny)
	if err != nil {
		return domain.User{}, err
	}
	c.set(ctx, key, u)

	if !u.Type.Matches(expected) {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func (c *UserCache) get(ctx context.Context, key string) (domain.User, bool) {
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("cache read failed", slog.String("key", key), slog.Any("err", err))
		}
		return domain.User{}, false
	}

	var cu cachedUser
	if err := msgpack.Unmarshal(b, &cu); err != nil {
		c.log.Warn("cache entry undecodable", slog.String("key", key), slog.Any("err", err))
		return domain.User{}, false
	}
	id, err := uuid.Parse(cu.ID)
	if err != nil {
		return domain.User{}, false
	}
	return domain.User{ID: id, Name: cu.Name, Type: domain.UserType(cu.Type), CreatedAt: cu.CreatedAt}, true
}

func (c *UserCache) set(ctx context.Context, key string, u domain.User) {
	b, err := msgpack.Marshal(cachedUser{
		ID:        u.ID.String(),
		Name:      u.Name,
		Type:      string(u.Type),
		CreatedAt: u.CreatedAt,
	})
	if err != nil {
		c.log.Warn("cache encode failed", slog.String("key", key), slog.Any("err", err))
		return
	}
	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", slog.String("key", key), slog.Any("err", err))
	}
}
