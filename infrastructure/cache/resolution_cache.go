package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"reelshare/domain/model"
	"reelshare/domain/repository"

	"github.com/redis/go-redis/v9"
)

const resolutionKeyPrefix = "reelshare:resolution:"

type ResolutionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResolutionCache stores successful payloads per shortcode for ttl.
func NewResolutionCache(client *redis.Client, ttl time.Duration) repository.IResolutionCache {
	return &ResolutionCache{client: client, ttl: ttl}
}

func (c *ResolutionCache) Get(ctx context.Context, shortcode string) (*model.ReelPayload, error) {
	raw, err := c.client.Get(ctx, resolutionKeyPrefix+shortcode).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var payload model.ReelPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		_ = c.client.Del(ctx, resolutionKeyPrefix+shortcode).Err()
		return nil, nil
	}
	return &payload, nil
}

func (c *ResolutionCache) Set(ctx context.Context, shortcode string, payload *model.ReelPayload) error {
	if payload == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, resolutionKeyPrefix+shortcode, raw, c.ttl).Err()
}
