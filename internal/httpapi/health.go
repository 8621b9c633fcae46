package httpapi

import (
	"context"
	"runtime"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// HealthHandler answers liveness/readiness probes with basic process and
// host metrics, in place of a dependency (database, message broker) this
// service doesn't have.
type HealthHandler struct {
	version   string
	startTime time.Time
}

// NewHealthHandler builds a HealthHandler stamped with the process start
// time and build version.
func NewHealthHandler(version string) *HealthHandler {
	if version == "" {
		version = "dev"
	}
	return &HealthHandler{version: version, startTime: time.Now()}
}

// HealthInput is the (empty) input for GET /health.
type HealthInput struct{}

// HealthOutput wraps HealthResponse as GET /health's body.
type HealthOutput struct {
	Body HealthResponse
}

// HealthResponse reports process uptime and host resource pressure.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Timestamp     string  `json:"timestamp"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	CPUCores      int     `json:"cpu_cores"`
	Load1Min      float64 `json:"load_1min"`
	MemoryUsedMB  float64 `json:"memory_used_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
}

// Register wires GET /health into api.
func (h *HealthHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getHealth",
		Method:      "GET",
		Path:        "/health",
		Summary:     "Health check",
		Description: "Reports process uptime and host resource usage",
		Tags:        []string{"System"},
	}, h.GetHealth)
}

// GetHealth implements GET /health.
func (h *HealthHandler) GetHealth(_ context.Context, _ *HealthInput) (*HealthOutput, error) {
	now := time.Now()
	resp := HealthResponse{
		Status:        "healthy",
		Version:       h.version,
		Timestamp:     now.UTC().Format(time.RFC3339),
		UptimeSeconds: now.Sub(h.startTime).Seconds(),
		CPUCores:      runtime.NumCPU(),
	}

	if avg, err := load.Avg(); err == nil && avg != nil {
		resp.Load1Min = avg.Load1
	}
	if vm, err := mem.VirtualMemory(); err == nil && vm != nil {
		resp.MemoryUsedMB = float64(vm.Used) / 1024 / 1024
		resp.MemoryTotalMB = float64(vm.Total) / 1024 / 1024
	}

	return &HealthOutput{Body: resp}, nil
}
