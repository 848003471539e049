package config

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/eduplan/seatplan/pkg/cache"
	apperrors "github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/retry"
	"github.com/eduplan/seatplan/pkg/session"
	"github.com/eduplan/seatplan/pkg/store"
	"github.com/eduplan/seatplan/pkg/store/file"
	"github.com/eduplan/seatplan/pkg/store/mongo"
	"github.com/eduplan/seatplan/pkg/store/postgres"
)

// Stores and sessions get a few attempts while their servers come up.
// The redis cache retries on its own.
const (
	connectAttempts = 4
	connectDelay    = 500 * time.Millisecond
)

// connect retries open on any failure.
func connect[T any](ctx context.Context, open func() (T, error)) (T, error) {
	var out T
	err := retry.Do(ctx, connectAttempts, connectDelay, func() error {
		v, err := open()
		if err != nil {
			return retry.Transient(err)
		}
		out = v
		return nil
	})
	return out, err
}

// OpenCache builds the configured document cache.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendFile:
		return cache.NewFileCache(c.Cache.Dir)
	case BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Prefix:   c.Cache.Prefix,
		})
	default:
		return cache.NewMemoryCache(), nil
	}
}

// OpenStore connects the configured record store.
func (c *Config) OpenStore(ctx context.Context) (store.Store, error) {
	switch c.Store.Backend {
	case BackendPostgres:
		return connect(ctx, func() (store.Store, error) { return postgres.Open(ctx, c.Store.PostgresDSN) })
	case BackendMongo:
		return connect(ctx, func() (store.Store, error) { return mongo.Open(ctx, c.Store.MongoURI, c.Store.MongoDatabase) })
	case BackendFile:
		return file.Open(c.Store.Dir)
	default:
		return nil, unknownBackend("store", c.Store.Backend)
	}
}

// OpenSessions builds the configured session store. It returns nil for
// unauthenticated mode.
func (c *Config) OpenSessions(ctx context.Context, logger *log.Logger) (session.Store, error) {
	switch c.Session.Backend {
	case BackendNone:
		logger.Warn("authentication disabled", "establishment", c.Session.LocalEstablishment)
		return nil, nil
	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
		ping := func() (struct{}, error) { return struct{}{}, client.Ping(ctx).Err() }
		if _, err := connect(ctx, ping); err != nil {
			client.Close()
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "connect session redis %s", c.Redis.Addr)
		}
		return session.NewRedisStore(client, c.Session.Prefix), nil
	default:
		return session.NewMemoryStore(), nil
	}
}
