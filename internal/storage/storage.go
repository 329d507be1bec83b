// Package storage persists stories, room records and generated media
// assets behind a backend-agnostic interface. Two backends ship: Redis
// (the default) and SQLite for single-node deployments.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwebster45206/riddle-rooms/pkg/story"
)

// Storage is the persistence boundary for the API and the generation
// worker. Lookups return nil (not an error) when the entity is missing.
type Storage interface {
	// Ping tests the backend connection.
	Ping(ctx context.Context) error

	// Close releases the backend connection.
	Close() error

	// CreateStory persists a new story.
	CreateStory(ctx context.Context, s *story.Story) error

	// GetStory retrieves a story by id.
	GetStory(ctx context.Context, id uuid.UUID) (*story.Story, error)

	// UpdateStory patches an existing story (status, goal, summaries).
	UpdateStory(ctx context.Context, s *story.Story) error

	// ListStories returns all stories, newest first.
	ListStories(ctx context.Context) ([]*story.Story, error)

	// CreateRoom persists a room slot.
	CreateRoom(ctx context.Context, r *story.RoomRecord) error

	// GetRoom retrieves a room record by id.
	GetRoom(ctx context.Context, id uuid.UUID) (*story.RoomRecord, error)

	// UpdateRoom patches an existing room record (level, transition asset).
	UpdateRoom(ctx context.Context, r *story.RoomRecord) error

	// ListRooms returns all room records for a story, ordered by room number.
	ListRooms(ctx context.Context, storyID uuid.UUID) ([]*story.RoomRecord, error)

	BlobStore
}

// BlobStore is the two-step asset contract: obtain an upload handle, put
// the bytes, then register metadata pointing at the handle. RegisterAsset
// returns the stable URL the asset is served from.
type BlobStore interface {
	NewUploadHandle(ctx context.Context) (string, error)
	PutBlob(ctx context.Context, handle string, mimeType string, data []byte) error
	RegisterAsset(ctx context.Context, name, handle, assetType, mimeType string) (string, error)

	// GetAsset returns the mime type and bytes of a registered asset, or
	// empty values if the asset does not exist.
	GetAsset(ctx context.Context, name string) (string, []byte, error)
}

// GetRoomView assembles the composite the play surface needs: the room,
// its parent story, the next room's id and a last-room flag. Returns nil
// when the room or its story is missing.
func GetRoomView(ctx context.Context, s Storage, roomID uuid.UUID) (*story.RoomView, error) {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil || room == nil {
		return nil, err
	}
	st, err := s.GetStory(ctx, room.StoryID)
	if err != nil || st == nil {
		return nil, err
	}
	rooms, err := s.ListRooms(ctx, room.StoryID)
	if err != nil {
		return nil, err
	}

	view := &story.RoomView{
		Room:       room,
		Story:      st,
		IsLastRoom: room.RoomNumber == st.TotalRooms,
	}
	for i, r := range rooms {
		if r.ID == roomID && i < len(rooms)-1 {
			next := rooms[i+1].ID
			view.NextRoomID = &next
			break
		}
	}
	return view, nil
}

// FirstRoomID returns the id of a story's first room, or uuid.Nil when the
// story has no rooms.
func FirstRoomID(ctx context.Context, s Storage, storyID uuid.UUID) (uuid.UUID, error) {
	rooms, err := s.ListRooms(ctx, storyID)
	if err != nil {
		return uuid.Nil, err
	}
	if len(rooms) == 0 {
		return uuid.Nil, nil
	}
	return rooms[0].ID, nil
}
