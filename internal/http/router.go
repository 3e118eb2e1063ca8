package http

import (
	"net/http"

	"cottonwood-backend/internal/handlers"
	"cottonwood-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIPrefix is the root of the staff membership API
const APIPrefix = "/api/admin/club-cottonwood"

// Handlers groups everything the router dispatches to
type Handlers struct {
	Members      *handlers.MemberHandler
	Sync         *handlers.SyncHandler
	Email        *handlers.EmailHandler
	ActivityLogs *handlers.ActivityLogHandler
	Backup       *handlers.BackupHandler
	Logs         *handlers.LogHandler
	Health       *handlers.HealthHandler
}

func NewRouter(h Handlers, authMiddleware *middleware.AuthMiddleware) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)

	// Health and metrics (no authentication)
	r.HandleFunc("/health", h.Health.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", h.Health.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", h.Health.DetailedHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())

	api := r.PathPrefix(APIPrefix).Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Dashboard
	api.HandleFunc("/stats", h.Members.Stats).Methods("GET")
	api.HandleFunc("/renewal-forecast", h.Members.Forecast).Methods("GET")

	// Roster (exports before {id} so they are not captured as ids)
	api.HandleFunc("/members", h.Members.ListMembers).Methods("GET")
	api.HandleFunc("/members/export.csv", h.Members.ExportCSV).Methods("GET")
	api.HandleFunc("/members/export.pdf", h.Members.ExportPDF).Methods("GET")
	api.HandleFunc("/members/{id}", h.Members.GetMember).Methods("GET")
	api.HandleFunc("/members/{id}", h.Members.UpdateMember).Methods("PUT")
	api.HandleFunc("/members/{id}/tag", h.Members.AddTag).Methods("POST")
	api.HandleFunc("/members/{id}/tag", h.Members.RemoveTag).Methods("DELETE")

	// Sync
	api.HandleFunc("/sync", h.Sync.Sync).Methods("POST")
	api.HandleFunc("/sync/status", h.Sync.Status).Methods("GET")

	// Outreach
	api.HandleFunc("/email", h.Email.Send).Methods("POST")
	api.HandleFunc("/email-settings", h.Email.GetSettings).Methods("GET")
	api.HandleFunc("/email-settings", h.Email.UpdateSettings).Methods("PUT")
	api.HandleFunc("/activity-logs", h.ActivityLogs.List).Methods("GET")

	// Tag search
	api.HandleFunc("/tags", h.Members.Tags).Methods("GET")
	api.HandleFunc("/customers-by-tag", h.Members.CustomersByTag).Methods("GET")

	// Operations
	api.HandleFunc("/logs", h.Logs.Tail).Methods("GET")
	api.Handle("/backup", authMiddleware.RequireAdmin(http.HandlerFunc(h.Backup.Run))).Methods("POST")

	return r
}
