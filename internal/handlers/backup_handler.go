package handlers

import (
	"net/http"

	"cottonwood-backend/internal/services"
	"cottonwood-backend/pkg/utils"
)

type BackupHandler struct {
	Service *services.BackupService
}

func NewBackupHandler(s *services.BackupService) *BackupHandler {
	return &BackupHandler{Service: s}
}

// Run uploads a roster snapshot now
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.Run(r.Context())
	if err != nil {
		respondServiceError(w, "Backup failed", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}
