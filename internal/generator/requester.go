package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jwebster45206/riddle-rooms/internal/services"
	"github.com/jwebster45206/riddle-rooms/pkg/level"
	"github.com/jwebster45206/riddle-rooms/pkg/story"
)

// UnparseableReplyError reports a generator reply that was not the JSON
// shape the instruction asked for. Structural and semantic level errors
// are reported separately, as level.StructuralError / level.SemanticError.
type UnparseableReplyError struct {
	Reason string
	Err    error
}

func (e *UnparseableReplyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unparseable generator reply: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("unparseable generator reply: %s", e.Reason)
}

func (e *UnparseableReplyError) Unwrap() error {
	return e.Err
}

// Reply is a fully parsed and validated room generation result.
type Reply struct {
	NarrativeSummary  string
	VisualDescription string
	Level             *level.Level
	ObjectNames       level.ObjectNames
}

// replyShell mirrors the JSON contract the instruction pins the model to.
// The level is kept raw so its validation errors carry their own types.
type replyShell struct {
	NarrativeSummary  string          `json:"narrativeSummary"`
	VisualDescription string          `json:"visualDescription"`
	Level             json.RawMessage `json:"level"`
}

// Requester asks a text generator for one room and turns the raw reply
// into a validated Reply.
type Requester struct {
	textGen   services.TextGenerator
	modelHint string
	logger    *slog.Logger
}

// NewRequester creates a Requester over the given text generator.
func NewRequester(textGen services.TextGenerator, modelHint string, logger *slog.Logger) *Requester {
	return &Requester{
		textGen:   textGen,
		modelHint: modelHint,
		logger:    logger,
	}
}

// RequestRoom builds the instruction for one room, issues a single
// generation call, and parses the reply. There is no retry: any failure
// propagates to the caller, which decides the story's fate.
func (r *Requester) RequestRoom(ctx context.Context, storyContext string, roomNumber, totalRooms int, previousSummaries []string, artStyle story.ArtStyle) (*Reply, error) {
	instruction := BuildRoomInstruction(storyContext, roomNumber, totalRooms, previousSummaries, artStyle)

	r.logger.Debug("Requesting room generation",
		"room_number", roomNumber,
		"total_rooms", totalRooms,
		"instruction_bytes", len(instruction))

	raw, err := r.textGen.Generate(ctx, instruction, r.modelHint)
	if err != nil {
		return nil, fmt.Errorf("room %d generation call failed: %w", roomNumber, err)
	}

	reply, err := ParseReply(raw)
	if err != nil {
		return nil, fmt.Errorf("room %d reply rejected: %w", roomNumber, err)
	}
	return reply, nil
}

// ParseReply strips markdown code fences, decodes the reply shell, and
// validates the embedded level document.
func ParseReply(raw string) (*Reply, error) {
	cleaned := StripCodeFences(raw)
	if cleaned == "" {
		return nil, &UnparseableReplyError{Reason: "empty reply"}
	}

	var shell replyShell
	if err := json.Unmarshal([]byte(cleaned), &shell); err != nil {
		return nil, &UnparseableReplyError{Reason: "reply is not valid JSON", Err: err}
	}
	if shell.NarrativeSummary == "" {
		return nil, &UnparseableReplyError{Reason: "missing narrativeSummary"}
	}
	if len(shell.Level) == 0 {
		return nil, &UnparseableReplyError{Reason: "missing level"}
	}

	lv, names, err := level.ParseAndValidate(shell.Level)
	if err != nil {
		return nil, err
	}

	return &Reply{
		NarrativeSummary:  shell.NarrativeSummary,
		VisualDescription: shell.VisualDescription,
		Level:             lv,
		ObjectNames:       names,
	}, nil
}

// StripCodeFences removes a surrounding markdown code fence, with or
// without a language tag, from a model reply.
func StripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line (e.g. "json").
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
