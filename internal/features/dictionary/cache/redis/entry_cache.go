package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Davlaati/humo-ai/internal/features/dictionary/models"
	rplatform "github.com/Davlaati/humo-ai/internal/platform/redis"
)

// EntryCache provides Redis-based caching for dictionary lookups. Keys
// are scoped per user because results depend on the learner's level and
// interests.
type EntryCache struct {
	client *rplatform.Client
	ttl    time.Duration
}

func NewEntryCache(client *rplatform.Client, ttl time.Duration) *EntryCache {
	return &EntryCache{client: client, ttl: ttl}
}

func (c *EntryCache) key(userID int64, word string) string {
	return fmt.Sprintf("dictionary:%d:%s", userID, strings.ToLower(word))
}

// Get returns the cached entry, or nil when the key is absent.
func (c *EntryCache) Get(ctx context.Context, userID int64, word string) (*models.Entry, error) {
	v, err := c.client.Get(ctx, c.key(userID, word)).Bytes()
	if err != nil {
		return nil, err
	}
	var e models.Entry
	if err := json.Unmarshal(v, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Set stores the entry under the user-scoped word key.
func (c *EntryCache) Set(ctx context.Context, userID int64, word string, e *models.Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(userID, word), b, c.ttl).Err()
}
