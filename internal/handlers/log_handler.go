package handlers

import (
	"net/http"
	"strconv"

	"cottonwood-backend/internal/logtail"
	"cottonwood-backend/pkg/utils"
)

type LogHandler struct {
	Buffer *logtail.Buffer
}

func NewLogHandler(b *logtail.Buffer) *LogHandler {
	return &LogHandler{Buffer: b}
}

// Tail returns recent server log lines, oldest first
func (h *LogHandler) Tail(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	utils.RespondJSON(w, http.StatusOK, h.Buffer.Tail(limit))
}
