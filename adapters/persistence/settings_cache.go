package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/reclaimhq/reclaim/internal/domain/settings"
)

const (
	settingsCacheKey       = "reclaim:settings"
	settingsCacheKeyPrefix = "reclaim:settings:"
)

// redisSettingsCache is the device-local key/value fallback store. One
// combined blob plus per-field keys, namespaced by setting name. Only the
// synchronizer writes here.
type redisSettingsCache struct {
	rdb *redis.Client
}

func NewRedisSettingsCache(rdb *redis.Client) settings.Cache {
	return &redisSettingsCache{rdb: rdb}
}

func (c *redisSettingsCache) Load(ctx context.Context) (settings.Settings, bool, error) {
	raw, err := c.rdb.Get(ctx, settingsCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return settings.Settings{}, false, nil
		}
		return settings.Settings{}, false, fmt.Errorf("settings cache read: %w", err)
	}

	var s settings.Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return settings.Settings{}, false, fmt.Errorf("settings cache decode: %w", err)
	}
	return s, true, nil
}

func (c *redisSettingsCache) Store(ctx context.Context, s settings.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("settings cache encode: %w", err)
	}

	pipe := c.rdb.Pipeline()
	pipe.Set(ctx, settingsCacheKey, raw, 0)
	pipe.Set(ctx, settingsCacheKeyPrefix+"language", s.Language, 0)
	pipe.Set(ctx, settingsCacheKeyPrefix+"theme_mode", string(s.ThemeMode), 0)
	pipe.Set(ctx, settingsCacheKeyPrefix+"font_size", string(s.FontSize), 0)
	pipe.Set(ctx, settingsCacheKeyPrefix+"density", string(s.Density), 0)
	pipe.Set(ctx, settingsCacheKeyPrefix+"border_radius", string(s.BorderRadius), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("settings cache write: %w", err)
	}
	return nil
}
