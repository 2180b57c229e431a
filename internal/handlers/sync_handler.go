package handlers

import (
	"encoding/json"
	"net/http"

	"distro-backend/internal/middleware"
	"distro-backend/internal/syncreplay"
)

// SyncHandler receives event batches from agent devices that were
// offline. Replay outcomes go back per event; HTTP 200 only means the
// batch was processed, not that every event applied.
type SyncHandler struct {
	Replayer *syncreplay.Replayer
}

func NewSyncHandler(replayer *syncreplay.Replayer) *SyncHandler {
	return &SyncHandler{Replayer: replayer}
}

type syncBatchRequest struct {
	Events []syncreplay.Envelope `json:"events"`
}

// POST /api/sync/events
func (h *SyncHandler) ReplayBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agentID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req syncBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Events) == 0 {
		http.Error(w, "Empty event batch", http.StatusBadRequest)
		return
	}

	results := h.Replayer.Apply(ctx, agentID, req.Events)
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}
