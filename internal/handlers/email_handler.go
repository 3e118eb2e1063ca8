package handlers

import (
	"encoding/json"
	"net/http"

	"cottonwood-backend/internal/middleware"
	"cottonwood-backend/internal/models"
	"cottonwood-backend/internal/services"
	"cottonwood-backend/pkg/utils"
)

type EmailHandler struct {
	Service  *services.EmailService
	Settings *services.SettingService
}

func NewEmailHandler(s *services.EmailService, settings *services.SettingService) *EmailHandler {
	return &EmailHandler{Service: s, Settings: settings}
}

// Send delivers a bulk outreach email
func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req models.SendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.Service.Send(r.Context(), &req)
	if err != nil {
		respondServiceError(w, "Failed to send email", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

// GetSettings returns the outreach defaults
func (h *EmailHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.EmailSettings(r.Context())
	if err != nil {
		respondServiceError(w, "Failed to load email settings", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, settings)
}

// UpdateSettings stores the outreach defaults
func (h *EmailHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.EmailSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updatedBy, ok := middleware.GetEmailFromContext(r.Context())
	if !ok {
		updatedBy = "staff"
	}
	settings, err := h.Settings.UpdateEmailSettings(r.Context(), req, updatedBy)
	if err != nil {
		respondServiceError(w, "Failed to save email settings", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, settings)
}
