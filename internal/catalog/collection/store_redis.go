// Copyright (c) 2026 Prostore. All rights reserved.
// Author: youssef.ahmed.dev@gmail.com

package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/yousseefah/prostore/internal/platform/constants"
)

// RedisListingCache implements [ListingCache] on go-redis.
//
// The root listing is the storefront landing page and by far the hottest
// read path. Entries are stored as one JSON blob under a fixed key with a
// short TTL; mutations invalidate eagerly and the TTL is only a backstop.
type RedisListingCache struct {
	client *redis.Client
}

// NewRedisListingCache constructs a Redis backed listing cache.
func NewRedisListingCache(client *redis.Client) *RedisListingCache {
	return &RedisListingCache{client: client}
}

// GetRoots returns the cached root listing, or (nil, nil) on a miss.
func (cache *RedisListingCache) GetRoots(context context.Context) ([]*Collection, error) {
	payload, err := cache.client.Get(context, constants.RedisKeyRootCollections).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("collection cache: get roots: %w", err)
	}

	var collections []*Collection
	if err := json.Unmarshal(payload, &collections); err != nil {
		// A corrupt entry is treated as a miss; the next Set overwrites it.
		return nil, nil
	}

	return collections, nil
}

// SetRoots stores the root listing with the configured TTL.
func (cache *RedisListingCache) SetRoots(context context.Context, collections []*Collection) error {
	payload, err := json.Marshal(collections)
	if err != nil {
		return fmt.Errorf("collection cache: marshal roots: %w", err)
	}

	if err := cache.client.Set(context, constants.RedisKeyRootCollections, payload, constants.RootListingTTL).Err(); err != nil {
		return fmt.Errorf("collection cache: set roots: %w", err)
	}

	return nil
}

// Invalidate drops the cached root listing.
func (cache *RedisListingCache) Invalidate(context context.Context) error {
	if err := cache.client.Del(context, constants.RedisKeyRootCollections).Err(); err != nil {
		return fmt.Errorf("collection cache: invalidate roots: %w", err)
	}
	return nil
}
