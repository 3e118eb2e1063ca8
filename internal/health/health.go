package health

import (
	"context"
	"runtime"
	"time"

	"cottonwood-backend/internal/cache"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	db      Pinger
	started time.Time
}

// Store names reported by the checker
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type HealthStatus struct {
	Status   string          `json:"status"`
	Store    string          `json:"store"`
	Database ComponentHealth `json:"database"`
	Redis    ComponentHealth `json:"redis"`
	Warnings []string        `json:"warnings,omitempty"`
}

type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

// DetailedStatus adds process and host figures for the monitoring dashboard
type DetailedStatus struct {
	HealthStatus
	Uptime     string     `json:"uptime"`
	Goroutines int        `json:"goroutines"`
	Host       HostHealth `json:"host"`
}

type HostHealth struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	DiskPercent   float64 `json:"disk_percent"`
}

// NewHealthChecker checks db when non-nil. A nil db means the in-memory
// store, which is always ready but reported with a warning.
func NewHealthChecker(db Pinger) *HealthChecker {
	return &HealthChecker{db: db, started: time.Now()}
}

// Store names the member store backing this process
func (h *HealthChecker) Store() string {
	if h.db == nil {
		return StoreMemory
	}
	return StorePostgres
}

// CheckBasic is healthy when the database answers. Redis is reported but
// optional.
func (h *HealthChecker) CheckBasic() HealthStatus {
	st := HealthStatus{
		Status:   "healthy",
		Store:    h.Store(),
		Database: h.checkDatabase(),
		Redis:    h.checkRedis(),
	}
	if st.Database.Status == "unhealthy" {
		st.Status = "unhealthy"
	}

	if st.Store == StoreMemory {
		st.Warnings = append(st.Warnings, "in-memory store: members and activity are lost on restart")
	}
	if st.Redis.Status != "healthy" {
		st.Warnings = append(st.Warnings, "redis unavailable: sync lock and tag search cache are process-local")
	}
	return st
}

// CheckDetailed adds host CPU, memory and disk usage
func (h *HealthChecker) CheckDetailed() DetailedStatus {
	d := DetailedStatus{
		HealthStatus: h.CheckBasic(),
		Uptime:       time.Since(h.started).Round(time.Second).String(),
		Goroutines:   runtime.NumGoroutine(),
	}

	if cpuPercents, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(cpuPercents) > 0 {
		d.Host.CPUPercent = cpuPercents[0]
	}
	if memStats, err := mem.VirtualMemory(); err == nil {
		d.Host.MemoryPercent = memStats.UsedPercent
	}
	if diskStats, err := disk.Usage("/"); err == nil {
		d.Host.DiskPercent = diskStats.UsedPercent
	}
	return d
}

func (h *HealthChecker) checkDatabase() ComponentHealth {
	if h.db == nil {
		return ComponentHealth{Status: "not_configured"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return ComponentHealth{
			Status:       "unhealthy",
			ResponseTime: responseTime,
		}
	}

	return ComponentHealth{
		Status:       "healthy",
		ResponseTime: responseTime,
	}
}

func (h *HealthChecker) checkRedis() ComponentHealth {
	if cache.GetClient() == nil {
		return ComponentHealth{Status: "not_configured"}
	}
	start := time.Now()
	status := "healthy"
	if !cache.IsHealthy() {
		status = "unhealthy"
	}
	return ComponentHealth{Status: status, ResponseTime: time.Since(start).Milliseconds()}
}
