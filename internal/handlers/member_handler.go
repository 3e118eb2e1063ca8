package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"cottonwood-backend/internal/membership"
	"cottonwood-backend/internal/models"
	"cottonwood-backend/internal/services"
	"cottonwood-backend/internal/timeutil"
	"cottonwood-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type MemberHandler struct {
	Service *services.MemberService
	Reports *services.ReportService
}

func NewMemberHandler(s *services.MemberService, reports *services.ReportService) *MemberHandler {
	return &MemberHandler{Service: s, Reports: reports}
}

// Stats returns the dashboard counters
func (h *MemberHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		respondServiceError(w, "Failed to compute stats", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, stats)
}

// Forecast returns the 16 month renewal forecast
func (h *MemberHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	months, err := h.Service.Forecast(r.Context())
	if err != nil {
		respondServiceError(w, "Failed to compute forecast", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, months)
}

// ListMembers returns one filtered page of the roster
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		utils.RespondErrorDetails(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}
	page, pageSize := parsePaging(r)

	resp, err := h.Service.ListMembers(r.Context(), filter, page, pageSize)
	if err != nil {
		respondServiceError(w, "Failed to list members", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

// GetMember returns one member with order history
func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	member, err := h.Service.GetMember(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, "Failed to load member", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, member)
}

// UpdateMember edits notes and the renewal override
func (h *MemberHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	member, err := h.Service.UpdateMember(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		respondServiceError(w, "Failed to update member", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, member)
}

// AddTag enrolls the member
func (h *MemberHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Service.AddTag(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, "Failed to add tag", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

// RemoveTag un-enrolls the member
func (h *MemberHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Service.RemoveTag(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, "Failed to remove tag", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

// Tags aggregates tag usage over stored members
func (h *MemberHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.Service.TagCounts(r.Context())
	if err != nil {
		respondServiceError(w, "Failed to load tags", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, tags)
}

// CustomersByTag runs a live commerce search
func (h *MemberHandler) CustomersByTag(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Service.SearchCustomersByTag(r.Context(), r.URL.Query().Get("tag"))
	if err != nil {
		respondServiceError(w, "Failed to search customers", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, customers)
}

// ExportCSV downloads the filtered roster as CSV
func (h *MemberHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		utils.RespondErrorDetails(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}
	data, err := h.Reports.GenerateRosterCSV(r.Context(), filter)
	if err != nil {
		respondServiceError(w, "Failed to export roster", err)
		return
	}
	writeDownload(w, "text/csv", "csv", data)
}

// ExportPDF downloads the filtered roster as PDF
func (h *MemberHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		utils.RespondErrorDetails(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}
	data, err := h.Reports.GenerateRosterPDF(r.Context(), filter)
	if err != nil {
		respondServiceError(w, "Failed to export roster", err)
		return
	}
	writeDownload(w, "application/pdf", "pdf", data)
}

func writeDownload(w http.ResponseWriter, contentType, ext string, data []byte) {
	filename := fmt.Sprintf("club_cottonwood_roster_%s.%s", timeutil.FormatDate(timeutil.Today()), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// parseFilter reads status, hasQuackTag and search query parameters
func parseFilter(r *http.Request) (membership.Filter, error) {
	var f membership.Filter
	q := r.URL.Query()

	if s := strings.TrimSpace(q.Get("status")); s != "" && !strings.EqualFold(s, "all") {
		status, ok := models.ParseMembershipStatus(s)
		if !ok {
			return f, fmt.Errorf("unknown status %q", s)
		}
		f.Status = &status
	}
	if s := strings.TrimSpace(q.Get("hasQuackTag")); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return f, fmt.Errorf("hasQuackTag must be true or false")
		}
		f.HasTag = &v
	}
	f.Search = q.Get("search")
	return f, nil
}

// parsePaging normalizes page and pageSize
func parsePaging(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = membership.DefaultPageSize
	}
	if pageSize > membership.MaxPageSize {
		pageSize = membership.MaxPageSize
	}
	return page, pageSize
}
