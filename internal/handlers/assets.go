package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/riddle-rooms/internal/storage"
)

type AssetHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewAssetHandler(storage storage.Storage, logger *slog.Logger) *AssetHandler {
	return &AssetHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP serves generated media
// Routes:
// GET /v1/assets/{name} - Raw bytes of a registered asset
func (h *AssetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for assets endpoint", "method", r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Method not allowed. Supported methods: GET"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/assets"), "/")
	if name == "" {
		http.Error(w, "Asset name is required", http.StatusBadRequest)
		return
	}

	mimeType, data, err := h.storage.GetAsset(r.Context(), name)
	if err != nil {
		h.logger.Error("Failed to load asset", "error", err, "name", name)
		http.Error(w, "Failed to load asset", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.Error(w, "Asset not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if _, err := w.Write(data); err != nil {
		h.logger.Error("Failed to write asset bytes", "error", err, "name", name)
	}
}
