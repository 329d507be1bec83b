package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/riddle-rooms/internal/storage"
)

type RoomHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewRoomHandler(storage storage.Storage, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles room view reads
// Routes:
// GET /v1/rooms/{id} - Read the composite view for one room
func (h *RoomHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for rooms endpoint", "method", r.Method)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	idStr := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/rooms"), "/")
	if idStr == "" {
		h.writeError(w, http.StatusBadRequest, "Room ID is required")
		return
	}
	roomID, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid room ID", "id", idStr, "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid room ID format")
		return
	}

	view, err := storage.GetRoomView(r.Context(), h.storage, roomID)
	if err != nil {
		h.logger.Error("Failed to get room view", "error", err, "room_id", roomID)
		h.writeError(w, http.StatusInternalServerError, "Failed to get room")
		return
	}
	if view == nil {
		h.writeError(w, http.StatusNotFound, "Room not found")
		return
	}

	if err := json.NewEncoder(w).Encode(view); err != nil {
		h.logger.Error("Failed to encode room response", "error", err)
	}
}

func (h *RoomHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}
