package handlers

import (
	"net/http"

	"cottonwood-backend/internal/health"
	"cottonwood-backend/pkg/utils"
)

type HealthHandler struct {
	checker *health.HealthChecker
}

func NewHealthHandler(checker *health.HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// BasicHealth answers liveness checks without touching dependencies
func (h *HealthHandler) BasicHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"store":  h.checker.Store(),
	})
}

// ReadinessHealth is 503 while the database is unreachable. The in-memory
// store is ready but carries a warning so it is not mistaken for production.
func (h *HealthHandler) ReadinessHealth(w http.ResponseWriter, r *http.Request) {
	status := h.checker.CheckBasic()
	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	utils.RespondJSON(w, code, status)
}

// DetailedHealth adds process and host figures
func (h *HealthHandler) DetailedHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.checker.CheckDetailed())
}
