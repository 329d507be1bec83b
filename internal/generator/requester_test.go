package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/riddle-rooms/internal/services"
	"github.com/jwebster45206/riddle-rooms/pkg/level"
	"github.com/jwebster45206/riddle-rooms/pkg/story"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

// validReply returns a generator reply for one room that passes parsing
// and level validation.
func validReply(roomNumber int) string {
	return fmt.Sprintf(`{
		"narrativeSummary": "The player searched room %d and found a lever.",
		"visualDescription": "A dim stone chamber lit by a single torch.",
		"level": {
			"id": "room_%d",
			"initialState": {"lever_pulled": false},
			"room": {
				"backgroundImage": "",
				"objects": [
					{
						"id": "lever",
						"name": "an iron wall lever",
						"area": {"x": 30, "y": 40, "width": 10, "height": 20},
						"text": [{"content": "An iron lever protrudes from the wall."}],
						"options": [
							{"label": "Pull the lever", "action": "next", "effects": {"setTrue": ["lever_pulled"]}},
							{"label": "Leave it", "action": "none"}
						]
					}
				]
			}
		}
	}`, roomNumber, roomNumber)
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripCodeFences(tt.in))
		})
	}
}

func TestParseReply(t *testing.T) {
	reply, err := ParseReply(validReply(1))
	require.NoError(t, err)
	assert.Equal(t, "The player searched room 1 and found a lever.", reply.NarrativeSummary)
	assert.Equal(t, "A dim stone chamber lit by a single torch.", reply.VisualDescription)
	require.NotNil(t, reply.Level)
	assert.Equal(t, "room_1", reply.Level.ID)
	assert.Equal(t, "an iron wall lever", reply.ObjectNames["lever"])
}

func TestParseReplyFenced(t *testing.T) {
	reply, err := ParseReply("```json\n" + validReply(1) + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "room_1", reply.Level.ID)
}

func TestParseReplyErrors(t *testing.T) {
	t.Run("empty reply", func(t *testing.T) {
		_, err := ParseReply("")
		var unparseable *UnparseableReplyError
		require.True(t, errors.As(err, &unparseable))
	})

	t.Run("not JSON", func(t *testing.T) {
		_, err := ParseReply("Sure! Here is your room design: it has a lever.")
		var unparseable *UnparseableReplyError
		require.True(t, errors.As(err, &unparseable))
	})

	t.Run("missing narrativeSummary", func(t *testing.T) {
		_, err := ParseReply(`{"visualDescription": "x", "level": {"id": "r"}}`)
		var unparseable *UnparseableReplyError
		require.True(t, errors.As(err, &unparseable))
	})

	t.Run("missing level", func(t *testing.T) {
		_, err := ParseReply(`{"narrativeSummary": "x", "visualDescription": "y"}`)
		var unparseable *UnparseableReplyError
		require.True(t, errors.As(err, &unparseable))
	})

	t.Run("invalid level surfaces as structural error", func(t *testing.T) {
		_, err := ParseReply(`{
			"narrativeSummary": "x",
			"visualDescription": "y",
			"level": {"id": "r", "initialState": {}, "room": {"objects": []}}
		}`)
		require.Error(t, err)

		var structural *level.StructuralError
		assert.True(t, errors.As(err, &structural), "level violations keep their own type, got %T", err)
		var unparseable *UnparseableReplyError
		assert.False(t, errors.As(err, &unparseable))
	})
}

func TestRequestRoom(t *testing.T) {
	textGen := &services.MockTextGenerator{Replies: []string{validReply(2)}}
	r := NewRequester(textGen, "", testLogger())

	reply, err := r.RequestRoom(context.Background(), "escape the castle", 2, 3, []string{"Room one happened."}, story.StyleComic)
	require.NoError(t, err)
	assert.Equal(t, "room_2", reply.Level.ID)

	require.Len(t, textGen.Calls, 1)
	instruction := textGen.Calls[0]
	assert.Contains(t, instruction, "Room 1: Room one happened.")
	assert.Contains(t, instruction, "MIDDLE room")
	assert.Contains(t, instruction, "comic")
}

func TestRequestRoomRoleHints(t *testing.T) {
	tests := []struct {
		name       string
		roomNumber int
		totalRooms int
		hint       string
	}{
		{"first room", 1, 3, "FIRST room"},
		{"middle room", 2, 3, "MIDDLE room"},
		{"final room", 3, 3, "FINAL room"},
		{"single room is both first and last", 1, 1, "FIRST room"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			textGen := &services.MockTextGenerator{Replies: []string{validReply(tt.roomNumber)}}
			r := NewRequester(textGen, "", testLogger())

			_, err := r.RequestRoom(context.Background(), "ctx", tt.roomNumber, tt.totalRooms, nil, story.StyleDrawing)
			require.NoError(t, err)
			assert.Contains(t, textGen.Calls[0], tt.hint)
		})
	}
}

func TestRequestRoomGenerationError(t *testing.T) {
	textGen := &services.MockTextGenerator{
		GenerateFunc: func(ctx context.Context, instruction, modelHint string) (string, error) {
			return "", errors.New("provider down")
		},
	}
	r := NewRequester(textGen, "", testLogger())

	_, err := r.RequestRoom(context.Background(), "ctx", 1, 1, nil, story.StyleComic)
	assert.Error(t, err)
}
