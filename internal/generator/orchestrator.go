package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/riddle-rooms/internal/services"
	"github.com/jwebster45206/riddle-rooms/internal/storage"
	"github.com/jwebster45206/riddle-rooms/pkg/story"
)

// Orchestrator runs the full story pipeline: room slots, sequential room
// generation with per-room persistence, the image pass, and the final
// transition-video pass.
type Orchestrator struct {
	store     storage.Storage
	requester *Requester
	imageGen  services.ImageGenerator
	videoGen  services.VideoGenerator
	logger    *slog.Logger
}

// NewOrchestrator wires the pipeline dependencies.
func NewOrchestrator(store storage.Storage, requester *Requester, imageGen services.ImageGenerator, videoGen services.VideoGenerator, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:     store,
		requester: requester,
		imageGen:  imageGen,
		videoGen:  videoGen,
		logger:    logger,
	}
}

// CreateStory persists a new story in status generating together with one
// empty room record per requested room. Slots exist before any content so
// room ids are stable and clients can poll while generation runs.
func (o *Orchestrator) CreateStory(ctx context.Context, prompt string, artStyle story.ArtStyle, totalRooms int) (*story.Story, error) {
	if totalRooms < 1 {
		return nil, fmt.Errorf("total rooms must be at least 1, got %d", totalRooms)
	}

	outline := BuildStoryOutline(prompt, artStyle)
	now := time.Now().UTC()
	st := &story.Story{
		ID:         uuid.New(),
		Prompt:     prompt,
		ArtStyle:   artStyle,
		Goal:       outline.Goal,
		TotalRooms: totalRooms,
		Status:     story.StatusGenerating,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := o.store.CreateStory(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to create story: %w", err)
	}

	for i := 1; i <= totalRooms; i++ {
		room := &story.RoomRecord{
			ID:         uuid.New(),
			StoryID:    st.ID,
			RoomNumber: i,
		}
		if err := o.store.CreateRoom(ctx, room); err != nil {
			return nil, fmt.Errorf("failed to create room slot %d: %w", i, err)
		}
	}

	o.logger.Info("Story created",
		"story_id", st.ID,
		"total_rooms", totalRooms,
		"art_style", artStyle)
	return st, nil
}

// GenerateStory fills a story's room slots one at a time, strictly in
// sequence. Each room is persisted before the next is requested, so a
// mid-sequence failure leaves all earlier rooms intact and playable data
// in storage. Any room or image failure marks the story failed and stops
// the pipeline. Transition videos run as a final pass once all rooms are
// complete; their failures are logged but do not fail the story.
//
// referenceImage, when non-empty, anchors the first room's background so
// generated art starts from a player-supplied scene.
func (o *Orchestrator) GenerateStory(ctx context.Context, storyID uuid.UUID, referenceImage []byte) error {
	st, err := o.store.GetStory(ctx, storyID)
	if err != nil {
		return fmt.Errorf("failed to load story: %w", err)
	}
	if st == nil {
		return fmt.Errorf("story %s not found", storyID)
	}

	rooms, err := o.store.ListRooms(ctx, storyID)
	if err != nil {
		return fmt.Errorf("failed to load room slots: %w", err)
	}
	if len(rooms) != st.TotalRooms {
		return o.failStory(ctx, st, fmt.Errorf("story has %d room slots, expected %d", len(rooms), st.TotalRooms))
	}

	storyContext := BuildStoryOutline(st.Prompt, st.ArtStyle).Context()

	// Background bytes are kept in memory across the loop so the
	// transition pass can interpolate between consecutive rooms without
	// re-fetching assets.
	backgrounds := make([][]byte, st.TotalRooms)

	for i, room := range rooms {
		roomNumber := i + 1
		reply, err := o.requester.RequestRoom(ctx, storyContext, roomNumber, st.TotalRooms, st.RoomSummaries, st.ArtStyle)
		if err != nil {
			return o.failStory(ctx, st, err)
		}

		background, err := o.runImagePass(ctx, st, room, reply, referenceImage)
		if err != nil {
			return o.failStory(ctx, st, fmt.Errorf("room %d image pass failed: %w", roomNumber, err))
		}
		backgrounds[i] = background

		room.Level = reply.Level
		if err := o.store.UpdateRoom(ctx, room); err != nil {
			return o.failStory(ctx, st, fmt.Errorf("failed to persist room %d: %w", roomNumber, err))
		}

		st.RoomSummaries = append(st.RoomSummaries, reply.NarrativeSummary)
		st.UpdatedAt = time.Now().UTC()
		if err := o.store.UpdateStory(ctx, st); err != nil {
			return o.failStory(ctx, st, fmt.Errorf("failed to persist story after room %d: %w", roomNumber, err))
		}

		o.logger.Info("Room generated",
			"story_id", st.ID,
			"room_number", roomNumber,
			"objects", len(reply.Level.Room.Objects))
	}

	if err := o.setStatus(ctx, st, story.StatusRoomsComplete); err != nil {
		return err
	}
	if err := o.setStatus(ctx, st, story.StatusGeneratingTransitions); err != nil {
		return err
	}

	o.runTransitionPass(ctx, st, rooms, backgrounds)

	return o.setStatus(ctx, st, story.StatusCompleted)
}

// runImagePass generates and uploads the room background and every named
// object's modal image, patching asset URLs into the reply's level. The
// returned background bytes feed the transition pass.
func (o *Orchestrator) runImagePass(ctx context.Context, st *story.Story, room *story.RoomRecord, reply *Reply, referenceImage []byte) ([]byte, error) {
	bgReq := services.ImageRequest{
		Prompt:      BackgroundImagePrompt(reply.VisualDescription, st.ArtStyle),
		AspectRatio: services.Aspect16x9,
		Size:        services.Size2K,
	}
	if room.RoomNumber == 1 && len(referenceImage) > 0 {
		bgReq.ReferenceImage = referenceImage
	}
	background, err := o.imageGen.Generate(ctx, bgReq)
	if err != nil {
		return nil, fmt.Errorf("background generation failed: %w", err)
	}

	bgName := fmt.Sprintf("story-%s-room-%d-bg", st.ID, room.RoomNumber)
	bgURL, err := o.uploadAsset(ctx, bgName, "background", "image/png", background)
	if err != nil {
		return nil, err
	}
	reply.Level.Room.BackgroundImage = bgURL

	for idx := range reply.Level.Room.Objects {
		obj := &reply.Level.Room.Objects[idx]
		name, ok := reply.ObjectNames[obj.ID]
		if !ok || name == "" {
			continue
		}
		data, err := o.imageGen.Generate(ctx, services.ImageRequest{
			Prompt:      ObjectImagePrompt(name, reply.VisualDescription),
			AspectRatio: services.Aspect1x1,
			Size:        services.Size1K,
		})
		if err != nil {
			return nil, fmt.Errorf("image for object %q failed: %w", obj.ID, err)
		}
		assetName := fmt.Sprintf("story-%s-room-%d-obj-%s", st.ID, room.RoomNumber, obj.ID)
		url, err := o.uploadAsset(ctx, assetName, "object", "image/png", data)
		if err != nil {
			return nil, err
		}
		obj.Image = url
	}

	return background, nil
}

// runTransitionPass generates one bridging video per consecutive room pair
// and stores it on the earlier room. A failed pair is logged and skipped;
// later pairs are still attempted.
func (o *Orchestrator) runTransitionPass(ctx context.Context, st *story.Story, rooms []*story.RoomRecord, backgrounds [][]byte) {
	for i := 0; i < len(rooms)-1; i++ {
		fromRoom := rooms[i]
		url, err := o.generateTransition(ctx, st, fromRoom.RoomNumber, backgrounds[i], backgrounds[i+1])
		if err != nil {
			o.logger.Error("Transition generation failed, skipping pair",
				"story_id", st.ID,
				"from_room", fromRoom.RoomNumber,
				"error", err.Error())
			continue
		}
		fromRoom.TransitionVideo = url
		if err := o.store.UpdateRoom(ctx, fromRoom); err != nil {
			o.logger.Error("Failed to persist transition asset",
				"story_id", st.ID,
				"from_room", fromRoom.RoomNumber,
				"error", err.Error())
		}
	}
}

func (o *Orchestrator) generateTransition(ctx context.Context, st *story.Story, fromNumber int, firstFrame, lastFrame []byte) (string, error) {
	data, err := o.videoGen.Generate(ctx, services.VideoRequest{
		Prompt:      TransitionPrompt(st.Goal, fromNumber, fromNumber+1, st.ArtStyle),
		FirstFrame:  firstFrame,
		LastFrame:   lastFrame,
		AspectRatio: services.Aspect16x9,
	})
	if err != nil {
		return "", err
	}
	assetName := fmt.Sprintf("story-%s-transition-%d", st.ID, fromNumber)
	return o.uploadAsset(ctx, assetName, "transition", "video/mp4", data)
}

// uploadAsset runs the blob two-step: handle, bytes, then registration.
func (o *Orchestrator) uploadAsset(ctx context.Context, name, assetType, mimeType string, data []byte) (string, error) {
	handle, err := o.store.NewUploadHandle(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get upload handle for %s: %w", name, err)
	}
	if err := o.store.PutBlob(ctx, handle, mimeType, data); err != nil {
		return "", fmt.Errorf("failed to upload blob for %s: %w", name, err)
	}
	url, err := o.store.RegisterAsset(ctx, name, handle, assetType, mimeType)
	if err != nil {
		return "", fmt.Errorf("failed to register asset %s: %w", name, err)
	}
	return url, nil
}

func (o *Orchestrator) setStatus(ctx context.Context, st *story.Story, status story.Status) error {
	st.Status = status
	st.UpdatedAt = time.Now().UTC()
	if err := o.store.UpdateStory(ctx, st); err != nil {
		return fmt.Errorf("failed to set story status %s: %w", status, err)
	}
	return nil
}

// failStory marks the story failed and returns the original error. Rooms
// persisted before the failure stay in storage untouched.
func (o *Orchestrator) failStory(ctx context.Context, st *story.Story, cause error) error {
	o.logger.Error("Story generation failed",
		"story_id", st.ID,
		"error", cause.Error())
	if err := o.setStatus(ctx, st, story.StatusFailed); err != nil {
		o.logger.Error("Failed to mark story failed",
			"story_id", st.ID,
			"error", err.Error())
	}
	return cause
}
