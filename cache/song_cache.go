package cache

import (
	"context"
	"encoding/json"
	"time"

	"musicbox/logger"
	"musicbox/model"

	"github.com/redis/go-redis/v9"
)

const songListKey = "songs:index"

// DefaultListTTL bounds how stale the cached index listing may get if an
// invalidation is lost.
const DefaultListTTL = 5 * time.Minute

// cachedSong is the cache wire form. Song hides the stored filename from its
// public JSON, but the cache round-trip has to keep it.
type cachedSong struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	Title      string    `json:"title"`
	Filename   string    `json:"filename"`
	Uploader   string    `json:"uploader"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// SongListCache keeps the unfiltered index listing in Redis so the landing
// page does not hit MySQL on every request. Uploads and deletions invalidate
// the key; the TTL catches anything that slips through. Cache failures are
// logged and treated as misses.
type SongListCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSongListCache creates a song list cache. A ttl of zero falls back to
// DefaultListTTL.
func NewSongListCache(client *redis.Client, ttl time.Duration) *SongListCache {
	if ttl <= 0 {
		ttl = DefaultListTTL
	}
	return &SongListCache{client: client, ttl: ttl}
}

// Get returns the cached listing, or ok=false on a miss.
func (c *SongListCache) Get(ctx context.Context) ([]*model.Song, bool) {
	payload, err := c.client.Get(ctx, songListKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Warn("Failed to read song list cache", logger.ErrorField(err))
		return nil, false
	}

	var cached []cachedSong
	if err := json.Unmarshal(payload, &cached); err != nil {
		logger.Warn("Failed to decode song list cache", logger.ErrorField(err))
		return nil, false
	}

	songs := make([]*model.Song, 0, len(cached))
	for _, cs := range cached {
		songs = append(songs, &model.Song{
			ID:         cs.ID,
			UserID:     cs.UserID,
			Title:      cs.Title,
			Filename:   cs.Filename,
			Uploader:   cs.Uploader,
			UploadedAt: cs.UploadedAt,
		})
	}
	return songs, true
}

// Set stores the listing with the configured TTL.
func (c *SongListCache) Set(ctx context.Context, songs []*model.Song) {
	cached := make([]cachedSong, 0, len(songs))
	for _, s := range songs {
		cached = append(cached, cachedSong{
			ID:         s.ID,
			UserID:     s.UserID,
			Title:      s.Title,
			Filename:   s.Filename,
			Uploader:   s.Uploader,
			UploadedAt: s.UploadedAt,
		})
	}

	payload, err := json.Marshal(cached)
	if err != nil {
		logger.Warn("Failed to encode song list cache", logger.ErrorField(err))
		return
	}
	if err := c.client.Set(ctx, songListKey, payload, c.ttl).Err(); err != nil {
		logger.Warn("Failed to write song list cache", logger.ErrorField(err))
	}
}

// Invalidate drops the cached listing after a catalog mutation.
func (c *SongListCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, songListKey).Err(); err != nil {
		logger.Warn("Failed to invalidate song list cache", logger.ErrorField(err))
	}
}
