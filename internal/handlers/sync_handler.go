package handlers

import (
	"net/http"
	"strconv"

	"cottonwood-backend/internal/services"
	"cottonwood-backend/pkg/utils"
)

type SyncHandler struct {
	Service *services.SyncService
}

func NewSyncHandler(s *services.SyncService) *SyncHandler {
	return &SyncHandler{Service: s}
}

// Sync runs a sync now. ?full=true forces a full re-read.
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	full, _ := strconv.ParseBool(r.URL.Query().Get("full"))

	result, err := h.Service.Sync(r.Context(), full)
	if err != nil {
		respondServiceError(w, "Sync failed", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

// Status reports the last successful sync
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.Service.Status(r.Context())
	if err != nil {
		respondServiceError(w, "Failed to read sync status", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, status)
}
