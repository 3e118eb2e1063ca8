package handlers

import (
	"errors"
	"log"
	"net/http"

	"cottonwood-backend/internal/services"
	"cottonwood-backend/pkg/utils"
)

// respondServiceError maps service errors to status codes. Internal errors
// are logged and replaced by a generic message.
func respondServiceError(w http.ResponseWriter, action string, err error) {
	var verr *services.ValidationError
	var serr *services.SyncError

	switch {
	case errors.As(err, &verr):
		utils.RespondErrorDetails(w, http.StatusBadRequest, "Invalid request", verr.Error())
	case errors.Is(err, services.ErrMemberNotFound):
		utils.RespondError(w, http.StatusNotFound, "Member not found")
	case errors.Is(err, services.ErrSyncInProgress):
		utils.RespondError(w, http.StatusConflict, "A sync is already in progress")
	case errors.Is(err, services.ErrSyncTimeout):
		utils.RespondErrorDetails(w, http.StatusGatewayTimeout, "Sync timed out", syncDetails(serr, err))
	case errors.Is(err, services.ErrSyncCanceled):
		log.Printf("[API] %s: %v", action, err)
		utils.RespondErrorDetails(w, http.StatusServiceUnavailable, "Sync canceled", syncDetails(serr, err))
	case errors.As(err, &serr):
		log.Printf("[API] %s: %v", action, err)
		utils.RespondErrorDetails(w, http.StatusBadGateway, "Sync failed", syncDetails(serr, err))
	case errors.Is(err, services.ErrCommerceUnavailable), errors.Is(err, services.ErrBackupDisabled):
		utils.RespondErrorDetails(w, http.StatusServiceUnavailable, "Service unavailable", err.Error())
	case errors.Is(err, services.ErrUpstream):
		log.Printf("[API] %s: %v", action, err)
		utils.RespondErrorDetails(w, http.StatusBadGateway, "Upstream service error", action)
	default:
		log.Printf("[API] %s: %v", action, err)
		utils.RespondErrorDetails(w, http.StatusInternalServerError, "Internal server error", action)
	}
}

func syncDetails(serr *services.SyncError, err error) string {
	if serr == nil && !errors.As(err, &serr) {
		return err.Error()
	}
	return serr.Error()
}
