package handler

import (
	"net/http"
	"runtime"
	"time"

	"catalog-proxy-api/internal/repository"
	"catalog-proxy-api/internal/rolimons"
	"catalog-proxy-api/pkg/response"
)

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	callLogs  repository.CallLogRepository
	prices    *rolimons.Cache
	cacheType string
	startTime time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(callLogs repository.CallLogRepository, prices *rolimons.Cache, cacheType string) *AdminHandler {
	return &AdminHandler{
		callLogs:  callLogs,
		prices:    prices,
		cacheType: cacheType,
		startTime: time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := make(map[string]interface{})

	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().UTC().Format(time.RFC3339)
	stats["cache_type"] = h.cacheType

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":   float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":     float64(memStats.Sys) / 1024 / 1024,
		"num_gc":     memStats.NumGC,
		"goroutines": runtime.NumGoroutine(),
	}

	if h.prices != nil {
		size, fetchedAt := h.prices.Info()
		priceIndex := map[string]interface{}{
			"items": size,
		}
		if !fetchedAt.IsZero() {
			priceIndex["fetched_at"] = fetchedAt.UTC().Format(time.RFC3339)
			priceIndex["age_seconds"] = int64(time.Since(fetchedAt).Seconds())
		}
		stats["price_index"] = priceIndex
	}

	if h.callLogs != nil {
		callStats, err := h.callLogs.Stats(ctx)
		if err == nil {
			stats["call_log"] = callStats
		} else {
			stats["call_log"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		}
	} else {
		stats["call_log"] = map[string]interface{}{
			"status": "not_configured",
		}
	}

	response.OK(w, stats)
}
