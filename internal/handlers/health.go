package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"linkscope/go-server/internal/analyzer"
	"linkscope/go-server/internal/db"
	"linkscope/go-server/internal/telemetry"
)

type HealthHandler struct {
	DB              *db.Database
	StartTime       time.Time
	Analyzer        *analyzer.Analyzer
	MaintenanceNote string
}

func NewHealthHandler(database *db.Database, a *analyzer.Analyzer, maintenanceNote string) *HealthHandler {
	return &HealthHandler{
		DB:              database,
		StartTime:       time.Now(),
		Analyzer:        a,
		MaintenanceNote: maintenanceNote,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	dbStatus := "healthy"
	if h.DB != nil {
		if err := h.DB.HealthCheck(c.Request.Context()); err != nil {
			dbStatus = "unhealthy: " + err.Error()
		}
	} else {
		dbStatus = "not configured"
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response := gin.H{
		"status":  "ok",
		"runtime": "go",
		"uptime":  time.Since(h.StartTime).String(),
		"database": gin.H{
			"status": dbStatus,
		},
		"memory": gin.H{
			"alloc_mb":       memStats.Alloc / 1024 / 1024,
			"sys_mb":         memStats.Sys / 1024 / 1024,
			"num_goroutines": runtime.NumGoroutine(),
		},
	}

	if h.Analyzer != nil {
		providerStats := h.Analyzer.Telemetry.AllStats()

		overallState := telemetry.Healthy
		for _, ps := range providerStats {
			if ps.State == telemetry.Unhealthy {
				overallState = telemetry.Unhealthy
				break
			}
			if ps.State == telemetry.Degraded {
				overallState = telemetry.Degraded
			}
		}
		response["overall_provider_health"] = string(overallState)
	}

	if h.MaintenanceNote != "" {
		response["maintenance_note"] = h.MaintenanceNote
	}

	c.JSON(http.StatusOK, response)
}
