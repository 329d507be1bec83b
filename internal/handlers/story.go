package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/riddle-rooms/internal/generator"
	"github.com/jwebster45206/riddle-rooms/internal/storage"
	"github.com/jwebster45206/riddle-rooms/pkg/story"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// JobEnqueuer hands a generation job to the worker pool.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, job *story.GenerationJob) error
}

// CreateStoryRequest is the POST /v1/stories body.
type CreateStoryRequest struct {
	Prompt     string `json:"prompt"`
	ArtStyle   string `json:"art_style"`
	TotalRooms int    `json:"total_rooms,omitempty"`
}

// StoryResponse decorates a story with navigation into its first room.
type StoryResponse struct {
	*story.Story
	FirstRoomID *uuid.UUID `json:"first_room_id,omitempty"`
}

type StoryHandler struct {
	storage      storage.Storage
	orchestrator *generator.Orchestrator
	jobs         JobEnqueuer
	defaultRooms int
	logger       *slog.Logger
}

func NewStoryHandler(storage storage.Storage, orchestrator *generator.Orchestrator, jobs JobEnqueuer, defaultRooms int, logger *slog.Logger) *StoryHandler {
	return &StoryHandler{
		storage:      storage,
		orchestrator: orchestrator,
		jobs:         jobs,
		defaultRooms: defaultRooms,
		logger:       logger,
	}
}

// ServeHTTP handles story operations
// Routes:
// POST /v1/stories      - Create a story and queue its generation
// GET /v1/stories       - List stories, newest first
// GET /v1/stories/{id}  - Read one story with its first room id
func (h *StoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, "/v1/stories")
	var storyID uuid.UUID
	var err error

	if path != "" && path != "/" {
		idStr := strings.Trim(path, "/")
		storyID, err = uuid.Parse(idStr)
		if err != nil {
			h.logger.Warn("Invalid story ID", "id", idStr, "error", err)
			h.writeError(w, http.StatusBadRequest, "Invalid story ID format")
			return
		}
	}

	switch r.Method {
	case http.MethodPost:
		if storyID != uuid.Nil {
			h.writeError(w, http.StatusBadRequest, "POST does not take a story ID")
			return
		}
		h.handleCreate(w, r)

	case http.MethodGet:
		if storyID == uuid.Nil {
			h.handleList(w, r)
			return
		}
		h.handleRead(w, r, storyID)

	default:
		h.logger.Warn("Method not allowed for stories endpoint", "method", r.Method)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST, GET")
	}
}

func (h *StoryHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		h.writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}
	artStyle, err := story.ParseArtStyle(req.ArtStyle)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	totalRooms := req.TotalRooms
	if totalRooms == 0 {
		totalRooms = h.defaultRooms
	}
	if totalRooms < 1 || totalRooms > 10 {
		h.writeError(w, http.StatusBadRequest, "total_rooms must be between 1 and 10")
		return
	}

	st, err := h.orchestrator.CreateStory(r.Context(), req.Prompt, artStyle, totalRooms)
	if err != nil {
		h.logger.Error("Failed to create story", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to create story")
		return
	}

	job := &story.GenerationJob{
		JobID:      uuid.New().String(),
		StoryID:    st.ID,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := h.jobs.Enqueue(r.Context(), job); err != nil {
		h.logger.Error("Failed to enqueue generation job", "error", err, "story_id", st.ID)
		h.writeError(w, http.StatusInternalServerError, "Failed to queue story generation")
		return
	}

	h.logger.Info("Story queued for generation", "story_id", st.ID, "job_id", job.JobID)
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(st); err != nil {
		h.logger.Error("Failed to encode story response", "error", err)
	}
}

func (h *StoryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	stories, err := h.storage.ListStories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list stories", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to list stories")
		return
	}
	if err := json.NewEncoder(w).Encode(stories); err != nil {
		h.logger.Error("Failed to encode stories response", "error", err)
	}
}

func (h *StoryHandler) handleRead(w http.ResponseWriter, r *http.Request, storyID uuid.UUID) {
	st, err := h.storage.GetStory(r.Context(), storyID)
	if err != nil {
		h.logger.Error("Failed to get story", "error", err, "story_id", storyID)
		h.writeError(w, http.StatusInternalServerError, "Failed to get story")
		return
	}
	if st == nil {
		h.writeError(w, http.StatusNotFound, "Story not found")
		return
	}

	resp := StoryResponse{Story: st}
	firstRoom, err := storage.FirstRoomID(r.Context(), h.storage, storyID)
	if err != nil {
		h.logger.Error("Failed to resolve first room", "error", err, "story_id", storyID)
		h.writeError(w, http.StatusInternalServerError, "Failed to resolve first room")
		return
	}
	if firstRoom != uuid.Nil {
		resp.FirstRoomID = &firstRoom
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode story response", "error", err)
	}
}

func (h *StoryHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}
