// Package story holds the persisted story and room models shared by the
// API, the generation worker and the console client.
package story

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/riddle-rooms/pkg/level"
)

// ArtStyle selects the visual direction for generated assets.
type ArtStyle string

const (
	StyleComic          ArtStyle = "comic"
	StyleDrawing        ArtStyle = "drawing"
	StylePhotorealistic ArtStyle = "photorealistic"
)

// ParseArtStyle validates a user-supplied art style.
func ParseArtStyle(s string) (ArtStyle, error) {
	switch ArtStyle(s) {
	case StyleComic, StyleDrawing, StylePhotorealistic:
		return ArtStyle(s), nil
	}
	return "", fmt.Errorf("unknown art style %q (expected comic, drawing or photorealistic)", s)
}

// Status is the story generation lifecycle. A story is playable only once
// it reaches StatusCompleted; StatusFailed is absorbing.
type Status string

const (
	StatusGenerating            Status = "generating"
	StatusRoomsComplete         Status = "rooms_complete"
	StatusGeneratingTransitions Status = "generating_transitions"
	StatusCompleted             Status = "completed"
	StatusFailed                Status = "failed"
)

// Story is one generated escape sequence. Rooms live in their own records,
// indexed by story id and ordered by sequence number.
type Story struct {
	ID         uuid.UUID `json:"id"`
	Prompt     string    `json:"prompt"`
	ArtStyle   ArtStyle  `json:"art_style"`
	Goal       string    `json:"goal"`
	TotalRooms int       `json:"total_rooms"`
	Status     Status    `json:"status"`

	// RoomSummaries holds each completed room's narrative summary, in
	// sequence order. Used only to seed later room prompts.
	RoomSummaries []string `json:"room_summaries,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoomRecord is one room slot of a story. Slots are created empty when the
// story is created so room ids are stable before content exists, then
// populated by the generation worker, then optionally patched once more
// with a transition asset after the following room exists.
type RoomRecord struct {
	ID              uuid.UUID    `json:"id"`
	StoryID         uuid.UUID    `json:"story_id"`
	RoomNumber      int          `json:"room_number"` // 1-based sequence number
	Level           *level.Level `json:"level,omitempty"`
	TransitionVideo string       `json:"transition_video,omitempty"`
}

// RoomView is the composite the play surface serves per room: the record,
// its parent story, and navigation to the following room.
type RoomView struct {
	Room       *RoomRecord `json:"room"`
	Story      *Story      `json:"story"`
	NextRoomID *uuid.UUID  `json:"next_room_id,omitempty"`
	IsLastRoom bool        `json:"is_last_room"`
}
