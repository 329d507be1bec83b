package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/riddle-rooms/pkg/story"
)

// RedisStorage implements Storage on Redis. Stories and rooms are JSON
// values under prefixed keys; the per-story room index is a sorted set
// scored by room number, and the story listing a sorted set scored by
// creation time.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

var _ Storage = (*RedisStorage)(nil)

const (
	storyKeyPrefix = "story:"
	roomKeyPrefix  = "room:"
	storyRoomsKey  = "story-rooms:" // + story id
	storyIndexKey  = "stories"
	blobKeyPrefix  = "blob:"
	assetKeyPrefix = "asset:"
)

// NewRedisStorage creates a Redis storage instance.
func NewRedisStorage(redisURL string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})
	return &RedisStorage{
		client: rdb,
		logger: logger,
	}
}

// Client exposes the underlying connection for components that share it
// (the job queue, the worker lock).
func (r *RedisStorage) Client() *redis.Client {
	return r.client
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	return nil
}

// WaitForConnection waits for Redis to become available during startup.
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}
		r.logger.Info("Redis connection established")
		return nil
	}
	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Story operations

func (r *RedisStorage) CreateStory(ctx context.Context, s *story.Story) error {
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	if err := r.writeStory(ctx, s); err != nil {
		return err
	}
	if err := r.client.ZAdd(ctx, storyIndexKey, redis.Z{
		Score:  float64(s.CreatedAt.UnixNano()),
		Member: s.ID.String(),
	}).Err(); err != nil {
		return fmt.Errorf("failed to index story: %w", err)
	}
	return nil
}

func (r *RedisStorage) UpdateStory(ctx context.Context, s *story.Story) error {
	s.UpdatedAt = time.Now()
	return r.writeStory(ctx, s)
}

func (r *RedisStorage) writeStory(ctx context.Context, s *story.Story) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal story: %w", err)
	}
	if err := r.client.Set(ctx, storyKeyPrefix+s.ID.String(), data, 0).Err(); err != nil {
		r.logger.Error("Failed to save story", "story_id", s.ID, "error", err)
		return fmt.Errorf("failed to save story: %w", err)
	}
	return nil
}

func (r *RedisStorage) GetStory(ctx context.Context, id uuid.UUID) (*story.Story, error) {
	data, err := r.client.Get(ctx, storyKeyPrefix+id.String()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load story: %w", err)
	}
	var s story.Story
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal story: %w", err)
	}
	return &s, nil
}

func (r *RedisStorage) ListStories(ctx context.Context) ([]*story.Story, error) {
	ids, err := r.client.ZRevRange(ctx, storyIndexKey, 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	stories := make([]*story.Story, 0, len(ids))
	for _, idStr := range ids {
		id, err := uuid.Parse(idStr)
		if err != nil {
			r.logger.Warn("Skipping malformed story index entry", "member", idStr)
			continue
		}
		s, err := r.GetStory(ctx, id)
		if err != nil {
			return nil, err
		}
		if s != nil {
			stories = append(stories, s)
		}
	}
	return stories, nil
}

// Room operations

func (r *RedisStorage) CreateRoom(ctx context.Context, rec *story.RoomRecord) error {
	if err := r.writeRoom(ctx, rec); err != nil {
		return err
	}
	if err := r.client.ZAdd(ctx, storyRoomsKey+rec.StoryID.String(), redis.Z{
		Score:  float64(rec.RoomNumber),
		Member: rec.ID.String(),
	}).Err(); err != nil {
		return fmt.Errorf("failed to index room: %w", err)
	}
	return nil
}

func (r *RedisStorage) UpdateRoom(ctx context.Context, rec *story.RoomRecord) error {
	return r.writeRoom(ctx, rec)
}

func (r *RedisStorage) writeRoom(ctx context.Context, rec *story.RoomRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}
	if err := r.client.Set(ctx, roomKeyPrefix+rec.ID.String(), data, 0).Err(); err != nil {
		r.logger.Error("Failed to save room", "room_id", rec.ID, "error", err)
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

func (r *RedisStorage) GetRoom(ctx context.Context, id uuid.UUID) (*story.RoomRecord, error) {
	data, err := r.client.Get(ctx, roomKeyPrefix+id.String()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	var rec story.RoomRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}
	return &rec, nil
}

func (r *RedisStorage) ListRooms(ctx context.Context, storyID uuid.UUID) ([]*story.RoomRecord, error) {
	ids, err := r.client.ZRange(ctx, storyRoomsKey+storyID.String(), 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	rooms := make([]*story.RoomRecord, 0, len(ids))
	for _, idStr := range ids {
		id, err := uuid.Parse(idStr)
		if err != nil {
			r.logger.Warn("Skipping malformed room index entry", "member", idStr)
			continue
		}
		rec, err := r.GetRoom(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			rooms = append(rooms, rec)
		}
	}
	return rooms, nil
}

// Blob operations

func (r *RedisStorage) NewUploadHandle(ctx context.Context) (string, error) {
	return uuid.New().String(), nil
}

func (r *RedisStorage) PutBlob(ctx context.Context, handle string, mimeType string, data []byte) error {
	if err := r.client.HSet(ctx, blobKeyPrefix+handle, "mime_type", mimeType, "data", data).Err(); err != nil {
		return fmt.Errorf("failed to store blob: %w", err)
	}
	return nil
}

func (r *RedisStorage) RegisterAsset(ctx context.Context, name, handle, assetType, mimeType string) (string, error) {
	exists, err := r.client.Exists(ctx, blobKeyPrefix+handle).Result()
	if err != nil {
		return "", fmt.Errorf("failed to check blob handle: %w", err)
	}
	if exists == 0 {
		return "", fmt.Errorf("blob handle %q has no uploaded bytes", handle)
	}
	if err := r.client.HSet(ctx, assetKeyPrefix+name,
		"handle", handle,
		"type", assetType,
		"mime_type", mimeType,
	).Err(); err != nil {
		return "", fmt.Errorf("failed to register asset: %w", err)
	}
	return "/v1/assets/" + name, nil
}

func (r *RedisStorage) GetAsset(ctx context.Context, name string) (string, []byte, error) {
	meta, err := r.client.HGetAll(ctx, assetKeyPrefix+name).Result()
	if err != nil {
		return "", nil, fmt.Errorf("failed to load asset metadata: %w", err)
	}
	if len(meta) == 0 {
		return "", nil, nil
	}
	blob, err := r.client.HGetAll(ctx, blobKeyPrefix+meta["handle"]).Result()
	if err != nil {
		return "", nil, fmt.Errorf("failed to load asset blob: %w", err)
	}
	return meta["mime_type"], []byte(blob["data"]), nil
}
