// Package rediscache implements a shared author projection cache on Redis,
// for deployments that run more than one API instance.
package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"Agora/internal/core/users"
)

const keyPrefix = "author:"

// ProjectionCache stores AuthorView values as JSON strings with a TTL
type ProjectionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProjectionCache creates a cache on an existing client
func NewProjectionCache(client *redis.Client, ttl time.Duration) *ProjectionCache {
	return &ProjectionCache{client: client, ttl: ttl}
}

// Connect parses a redis:// URL and verifies the server answers
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func key(id string) string {
	return keyPrefix + id
}

// GetMany implements users.ProjectionCache.
// A Redis failure is logged and reported as a full miss so reads fall back to the store.
func (c *ProjectionCache) GetMany(ctx context.Context, ids []string) (map[string]*users.AuthorView, []string) {
	found := make(map[string]*users.AuthorView, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int("keys", len(keys)).Msg("author cache read failed")
		return found, ids
	}

	var missing []string
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var view users.AuthorView
		if err := json.Unmarshal([]byte(raw), &view); err != nil {
			missing = append(missing, ids[i])
			continue
		}
		found[ids[i]] = &view
	}
	return found, missing
}

// AddMany implements users.ProjectionCache
func (c *ProjectionCache) AddMany(ctx context.Context, views []*users.AuthorView) {
	if len(views) == 0 {
		return
	}

	pipe := c.client.Pipeline()
	for _, view := range views {
		if view == nil {
			continue
		}
		data, err := json.Marshal(view)
		if err != nil {
			continue
		}
		pipe.Set(ctx, key(view.ID), data, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int("views", len(views)).Msg("author cache write failed")
	}
}
