// FilePath: internal/cache/devicecache.go

// Package cache keeps a Redis-backed lookup of registered devices so
// that the MQTT ingest path does not hit Postgres for every message.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lumiguard/andonhub/internal/models"
	"github.com/lumiguard/andonhub/internal/repository"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

const keyPrefix = "andon:device:"

// DeviceCache is a read-through cache over the device registry.
type DeviceCache struct {
	client  *redis.Client
	devices repository.DeviceRepository
	ttl     time.Duration
}

// New creates a DeviceCache. ttl bounds staleness after registry
// changes made by the external provisioning tool.
func New(client *redis.Client, devices repository.DeviceRepository, ttl time.Duration) *DeviceCache {
	return &DeviceCache{
		client:  client,
		devices: devices,
		ttl:     ttl,
	}
}

// Get returns the registered device for a mac address, reading through
// to the registry on a cache miss. Unregistered devices are not
// negatively cached; the registry's not-found error passes through.
func (c *DeviceCache) Get(ctx context.Context, macAddress string) (*models.Device, error) {
	key := keyPrefix + macAddress

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		device := &models.Device{}
		if err := json.Unmarshal([]byte(cached), device); err == nil {
			return device, nil
		}
		// Corrupt entry: fall through to the registry and rewrite it.
		nuts.L.Warnf("[DeviceCache] Dropping unreadable cache entry for %s", macAddress)
	} else if err != redis.Nil {
		nuts.L.Warnf("[DeviceCache] Redis get failed for %s: %v", macAddress, err)
	}

	device, err := c.devices.Get(ctx, macAddress)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(device); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			nuts.L.Warnf("[DeviceCache] Redis set failed for %s: %v", macAddress, err)
		}
	}
	return device, nil
}

// Clear drops all cached device entries. Called at startup so a
// restarted hub never serves registry state from before a redeploy.
func (c *DeviceCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	var deleted int
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache key %s: %w", iter.Val(), err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan device cache: %w", err)
	}
	nuts.L.Infof("[DeviceCache] Cleared %d cached device entries", deleted)
	return nil
}
