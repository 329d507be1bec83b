package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/riddle-rooms/internal/storage"
	"github.com/jwebster45206/riddle-rooms/pkg/level"
	"github.com/jwebster45206/riddle-rooms/pkg/story"
)

func seedStoryWithRooms(t *testing.T, store *storage.MockStorage, totalRooms int) (*story.Story, []*story.RoomRecord) {
	t.Helper()
	ctx := context.Background()

	st := &story.Story{
		ID:         uuid.New(),
		Prompt:     "escape the tower",
		ArtStyle:   story.StyleComic,
		Goal:       "Complete the challenge: escape the tower",
		TotalRooms: totalRooms,
		Status:     story.StatusCompleted,
	}
	require.NoError(t, store.CreateStory(ctx, st))

	rooms := make([]*story.RoomRecord, 0, totalRooms)
	for i := 1; i <= totalRooms; i++ {
		room := &story.RoomRecord{
			ID:         uuid.New(),
			StoryID:    st.ID,
			RoomNumber: i,
			Level:      level.DemoLevel(),
		}
		require.NoError(t, store.CreateRoom(ctx, room))
		rooms = append(rooms, room)
	}
	return st, rooms
}

func TestRoomHandler(t *testing.T) {
	store := storage.NewMockStorage()
	st, rooms := seedStoryWithRooms(t, store, 3)
	handler := NewRoomHandler(store, testLogger())

	t.Run("middle room view", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/rooms/"+rooms[1].ID.String(), nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var view story.RoomView
		require.NoError(t, json.NewDecoder(w.Body).Decode(&view))
		assert.Equal(t, st.ID, view.Story.ID)
		assert.Equal(t, 2, view.Room.RoomNumber)
		require.NotNil(t, view.NextRoomID)
		assert.Equal(t, rooms[2].ID, *view.NextRoomID)
		assert.False(t, view.IsLastRoom)
	})

	t.Run("last room view", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/rooms/"+rooms[2].ID.String(), nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var view story.RoomView
		require.NoError(t, json.NewDecoder(w.Body).Decode(&view))
		assert.Nil(t, view.NextRoomID)
		assert.True(t, view.IsLastRoom)
	})

	t.Run("unknown room", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/rooms/"+uuid.New().String(), nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/rooms/nope", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/rooms/"+rooms[0].ID.String(), nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestAssetHandler(t *testing.T) {
	store := storage.NewMockStorage()
	ctx := context.Background()

	handle, err := store.NewUploadHandle(ctx)
	require.NoError(t, err)
	require.NoError(t, store.PutBlob(ctx, handle, "image/png", []byte("png-bytes")))
	url, err := store.RegisterAsset(ctx, "room-1-bg", handle, "background", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/v1/assets/room-1-bg", url)

	handler := NewAssetHandler(store, testLogger())

	t.Run("serves registered asset", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.Equal(t, []byte("png-bytes"), w.Body.Bytes())
	})

	t.Run("unknown asset", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/assets/missing", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/assets/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
