package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/riddle-rooms/pkg/level"
	"github.com/jwebster45206/riddle-rooms/pkg/story"
)

func newTestRedisStorage(t *testing.T) *RedisStorage {
	t.Helper()
	mr := miniredis.RunT(t)
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
	store := NewRedisStorage(mr.Addr(), log)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRedisStorageStories(t *testing.T) {
	store := newTestRedisStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	st := &story.Story{
		ID:         uuid.New(),
		Prompt:     "escape the lighthouse",
		ArtStyle:   story.StyleComic,
		Goal:       "Complete the challenge: escape the lighthouse",
		TotalRooms: 3,
		Status:     story.StatusGenerating,
	}
	require.NoError(t, store.CreateStory(ctx, st))

	loaded, err := store.GetStory(ctx, st.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, st.Prompt, loaded.Prompt)
	assert.Equal(t, story.StatusGenerating, loaded.Status)

	loaded.Status = story.StatusCompleted
	loaded.RoomSummaries = []string{"room one"}
	require.NoError(t, store.UpdateStory(ctx, loaded))

	reloaded, err := store.GetStory(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, story.StatusCompleted, reloaded.Status)
	assert.Equal(t, []string{"room one"}, reloaded.RoomSummaries)

	t.Run("missing story returns nil", func(t *testing.T) {
		missing, err := store.GetStory(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestRedisStorageListStoriesNewestFirst(t *testing.T) {
	store := newTestRedisStorage(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		st := &story.Story{ID: uuid.New(), Prompt: "p", ArtStyle: story.StyleComic, TotalRooms: 1, Status: story.StatusGenerating}
		require.NoError(t, store.CreateStory(ctx, st))
		ids = append(ids, st.ID)
	}

	stories, err := store.ListStories(ctx)
	require.NoError(t, err)
	require.Len(t, stories, 3)
	assert.Equal(t, ids[2], stories[0].ID, "newest story comes first")
	assert.Equal(t, ids[0], stories[2].ID)
}

func TestRedisStorageRooms(t *testing.T) {
	store := newTestRedisStorage(t)
	ctx := context.Background()

	storyID := uuid.New()
	// Create out of order to prove ordering comes from room numbers.
	for _, n := range []int{2, 1, 3} {
		rec := &story.RoomRecord{ID: uuid.New(), StoryID: storyID, RoomNumber: n}
		require.NoError(t, store.CreateRoom(ctx, rec))
	}

	rooms, err := store.ListRooms(ctx, storyID)
	require.NoError(t, err)
	require.Len(t, rooms, 3)
	for i, room := range rooms {
		assert.Equal(t, i+1, room.RoomNumber)
	}

	// Populate room 1 with a level.
	rooms[0].Level = level.DemoLevel()
	require.NoError(t, store.UpdateRoom(ctx, rooms[0]))

	loaded, err := store.GetRoom(ctx, rooms[0].ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Level)
	assert.Equal(t, "victorian_study", loaded.Level.ID)

	t.Run("missing room returns nil", func(t *testing.T) {
		missing, err := store.GetRoom(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestRedisStorageBlobContract(t *testing.T) {
	store := newTestRedisStorage(t)
	ctx := context.Background()

	handle, err := store.NewUploadHandle(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, handle)

	t.Run("register before upload fails", func(t *testing.T) {
		_, err := store.RegisterAsset(ctx, "early", handle+"-unknown", "background", "image/png")
		assert.Error(t, err)
	})

	require.NoError(t, store.PutBlob(ctx, handle, "image/png", []byte("png-bytes")))

	url, err := store.RegisterAsset(ctx, "room-bg", handle, "background", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/v1/assets/room-bg", url)

	mimeType, data, err := store.GetAsset(ctx, "room-bg")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, []byte("png-bytes"), data)

	t.Run("missing asset returns empty values", func(t *testing.T) {
		mimeType, data, err := store.GetAsset(ctx, "nope")
		require.NoError(t, err)
		assert.Empty(t, mimeType)
		assert.Nil(t, data)
	})
}

func TestGetRoomViewComposite(t *testing.T) {
	store := newTestRedisStorage(t)
	ctx := context.Background()

	st := &story.Story{ID: uuid.New(), Prompt: "p", ArtStyle: story.StyleComic, TotalRooms: 2, Status: story.StatusCompleted}
	require.NoError(t, store.CreateStory(ctx, st))

	first := &story.RoomRecord{ID: uuid.New(), StoryID: st.ID, RoomNumber: 1, Level: level.DemoLevel()}
	second := &story.RoomRecord{ID: uuid.New(), StoryID: st.ID, RoomNumber: 2, Level: level.DemoLevel()}
	require.NoError(t, store.CreateRoom(ctx, first))
	require.NoError(t, store.CreateRoom(ctx, second))

	view, err := GetRoomView(ctx, store, first.ID)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, st.ID, view.Story.ID)
	require.NotNil(t, view.NextRoomID)
	assert.Equal(t, second.ID, *view.NextRoomID)
	assert.False(t, view.IsLastRoom)

	last, err := GetRoomView(ctx, store, second.ID)
	require.NoError(t, err)
	assert.Nil(t, last.NextRoomID)
	assert.True(t, last.IsLastRoom)

	t.Run("missing room yields nil view", func(t *testing.T) {
		view, err := GetRoomView(ctx, store, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, view)
	})

	firstID, err := FirstRoomID(ctx, store, st.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, firstID)

	noRooms, err := FirstRoomID(ctx, store, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, noRooms)
}
