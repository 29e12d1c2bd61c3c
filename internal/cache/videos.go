// Package cache fronts the durable video record store with a Redis read-through cache for web
// reads. The scheduler worker never reads through it.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"yt-summary-publisher/internal/logger"
	"yt-summary-publisher/internal/models"
)

const keyPrefix = "video:"

// VideoStore is the durable store being cached.
type VideoStore interface {
	Get(ctx context.Context, videoID string) (*models.VideoRecord, error)
	Save(ctx context.Context, rec *models.VideoRecord) error
	Delete(ctx context.Context, videoID string) (bool, error)
}

// Redis is the subset of *redis.Client the cache uses.
type Redis interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Videos is a read-through, invalidate-on-write cache. Redis errors degrade to store reads.
type Videos struct {
	store VideoStore
	rdb   Redis
	ttl   time.Duration
}

// NewVideos returns a cache over store. A nil rdb disables caching.
func NewVideos(store VideoStore, rdb Redis, ttl time.Duration) *Videos {
	return &Videos{store: store, rdb: rdb, ttl: ttl}
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

func key(videoID string) string { return keyPrefix + videoID }

func (v *Videos) Get(ctx context.Context, videoID string) (*models.VideoRecord, error) {
	if v.rdb != nil {
		raw, err := v.rdb.Get(ctx, key(videoID)).Bytes()
		switch {
		case err == nil:
			var rec models.VideoRecord
			if jerr := json.Unmarshal(raw, &rec); jerr == nil {
				return &rec, nil
			}
		case !errors.Is(err, redis.Nil):
			logger.GetLogger().WithError(err).WithField("video_id", videoID).Warn("Video cache read failed")
		}
	}

	rec, err := v.store.Get(ctx, videoID)
	if err != nil {
		return nil, err
	}
	v.fill(ctx, rec)
	return rec, nil
}

func (v *Videos) fill(ctx context.Context, rec *models.VideoRecord) {
	if v.rdb == nil {
		return
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := v.rdb.Set(ctx, key(rec.VideoID), raw, v.ttl).Err(); err != nil {
		logger.GetLogger().WithError(err).WithField("video_id", rec.VideoID).Warn("Video cache write failed")
	}
}

// Save writes to the store and drops any cached copy.
func (v *Videos) Save(ctx context.Context, rec *models.VideoRecord) error {
	if err := v.store.Save(ctx, rec); err != nil {
		return err
	}
	v.Invalidate(ctx, rec.VideoID)
	return nil
}

func (v *Videos) Delete(ctx context.Context, videoID string) (bool, error) {
	ok, err := v.store.Delete(ctx, videoID)
	if err != nil {
		return false, err
	}
	v.Invalidate(ctx, videoID)
	return ok, nil
}

func (v *Videos) Invalidate(ctx context.Context, videoID string) {
	if v.rdb == nil {
		return
	}
	if err := v.rdb.Del(ctx, key(videoID)).Err(); err != nil {
		logger.GetLogger().WithError(err).WithField("video_id", videoID).Warn("Video cache invalidation failed")
	}
}
