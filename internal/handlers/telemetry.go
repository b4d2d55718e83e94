package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"linkscope/go-server/internal/analyzer"
	"linkscope/go-server/internal/intel"
)

type TelemetryHandler struct {
	Analyzer *analyzer.Analyzer
	Provider *intel.HTTPProvider
}

func NewTelemetryHandler(a *analyzer.Analyzer, provider *intel.HTTPProvider) *TelemetryHandler {
	return &TelemetryHandler{Analyzer: a, Provider: provider}
}

// Telemetry reports per-provider health counters and cache hit rates for
// the intelligence backends.
func (h *TelemetryHandler) Telemetry(c *gin.Context) {
	providerStats := h.Analyzer.Telemetry.AllStats()

	providers := make([]gin.H, 0, len(providerStats))
	for _, ps := range providerStats {
		p := gin.H{
			"name":                 ps.Name,
			"state":                string(ps.State),
			"total_requests":       ps.TotalRequests,
			"success_count":        ps.SuccessCount,
			"failure_count":        ps.FailureCount,
			"consecutive_failures": ps.ConsecFailures,
			"avg_latency_ms":       ps.AvgLatencyMs,
			"p95_latency_ms":       ps.P95LatencyMs,
			"in_cooldown":          ps.InCooldown,
		}
		if ps.LastError != "" {
			p["last_error"] = ps.LastError
		}
		if ps.LastErrorTime != nil {
			p["last_error_time"] = ps.LastErrorTime.Format(time.RFC3339)
		}
		if ps.LastSuccessTime != nil {
			p["last_success_time"] = ps.LastSuccessTime.Format(time.RFC3339)
		}
		providers = append(providers, p)
	}

	caches := []gin.H{}
	if h.Provider != nil {
		for _, cs := range h.Provider.CacheStats() {
			caches = append(caches, gin.H{
				"name":     cs.Name,
				"size":     cs.Size,
				"max_size": cs.MaxSize,
				"hits":     cs.Hits,
				"misses":   cs.Misses,
				"hit_rate": cs.HitRate,
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"providers": providers,
		"caches":    caches,
	})
}
