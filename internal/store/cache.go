package store

import (
	"context"
	"fmt"

	"github.com/valkey-io/valkey-go"
)

// activeCallTTLSeconds bounds how long a stale active-call entry can
// linger if the process dies mid-call
const activeCallTTLSeconds = 6 * 3600

// Cache mirrors live call activity into Valkey so other CRM services
// can observe it without touching this process's memory
type Cache struct {
	client valkey.Client
}

// NewCache creates a new cache instance
func NewCache(ctx context.Context, url, password string, db int) (*Cache, error) {
	opts := valkey.ClientOption{
		InitAddress: []string{url},
		SelectDB:    db,
	}
	if password != "" {
		opts.Password = password
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	// Test connection
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		return nil, fmt.Errorf("failed to ping valkey: %w", err)
	}

	return &Cache{client: client}, nil
}

// Close closes the cache connection
func (c *Cache) Close() {
	c.client.Close()
}

// activeCallKey generates the cache key for tracking active calls
func activeCallKey(sessionID string) string {
	return fmt.Sprintf("call:active:%s", sessionID)
}

// SetActiveCall marks a call as active in the cache
func (c *Cache) SetActiveCall(ctx context.Context, sessionID string, data map[string]string) error {
	key := activeCallKey(sessionID)

	cmd := c.client.B().Hset().Key(key).FieldValue()
	for k, v := range data {
		cmd = cmd.FieldValue(k, v)
	}
	if err := c.client.Do(ctx, cmd.Build()).Error(); err != nil {
		return err
	}

	return c.client.Do(ctx,
		c.client.B().Expire().Key(key).Seconds(activeCallTTLSeconds).Build(),
	).Error()
}

// GetActiveCall retrieves active call data
func (c *Cache) GetActiveCall(ctx context.Context, sessionID string) (map[string]string, error) {
	key := activeCallKey(sessionID)
	return c.client.Do(ctx, c.client.B().Hgetall().Key(key).Build()).AsStrMap()
}

// RemoveActiveCall removes a call from the active calls cache
func (c *Cache) RemoveActiveCall(ctx context.Context, sessionID string) error {
	key := activeCallKey(sessionID)
	return c.client.Do(ctx, c.client.B().Del().Key(key).Build()).Error()
}

// GetActiveCallCount returns the number of active calls
func (c *Cache) GetActiveCallCount(ctx context.Context) (int64, error) {
	keys, err := c.client.Do(ctx, c.client.B().Keys().Pattern("call:active:*").Build()).AsStrSlice()
	if err != nil {
		return 0, err
	}
	return int64(len(keys)), nil
}
