package utils

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

// How long a seen-title marker lives. The DB unique constraint is the real
// dedup guarantee, the cache only short-circuits the common re-scrape case.
const dedupCacheTTL = 7 * 24 * time.Hour

var ctx = context.Background()

// DedupCache is a redis-backed fast path in front of the title-keyed dedup
// lookup. It can return false negatives (a title missing here may still
// exist in the DB), never false positives.
type DedupCache struct {
	inner *redis.Client
}

func GetDedupCache() (*DedupCache, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWD"),
		DB:       0, // use default DB
	})
	_, err := redisClient.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	return &DedupCache{inner: redisClient}, nil
}

func titleKey(title string) string {
	return "news_title__" + TextToMd5Hash(title)
}

// Seen reports whether the title was marked before. Errors degrade to "not
// seen" so that redis unavailability never blocks ingestion.
func (c *DedupCache) Seen(title string) bool {
	if c == nil {
		return false
	}
	res, err := c.inner.Exists(ctx, titleKey(title)).Result()
	if err != nil {
		return false
	}
	return res > 0
}

// MarkSeen records the title. Best effort, errors are ignored.
func (c *DedupCache) MarkSeen(title string) {
	if c == nil {
		return
	}
	c.inner.Set(ctx, titleKey(title), "1", dedupCacheTTL)
}
