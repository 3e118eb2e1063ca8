package handlers

import (
	"net/http"
	"strconv"

	"cottonwood-backend/internal/services"
	"cottonwood-backend/pkg/utils"
)

type ActivityLogHandler struct {
	Service *services.ActivityLogService
}

func NewActivityLogHandler(s *services.ActivityLogService) *ActivityLogHandler {
	return &ActivityLogHandler{Service: s}
}

// List returns recent activity, newest first
func (h *ActivityLogHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	logs, err := h.Service.List(r.Context(), limit, r.URL.Query().Get("type"))
	if err != nil {
		respondServiceError(w, "Failed to retrieve activity logs", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, logs)
}
