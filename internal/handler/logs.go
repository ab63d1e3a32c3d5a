package handler

import (
	"net/http"
	"strconv"

	"catalog-proxy-api/internal/repository"
	"catalog-proxy-api/pkg/apierror"
	"catalog-proxy-api/pkg/response"
)

// LogHandler serves the upstream call log.
type LogHandler struct {
	callLogs repository.CallLogRepository
}

// NewLogHandler creates a new log handler.
func NewLogHandler(callLogs repository.CallLogRepository) *LogHandler {
	return &LogHandler{callLogs: callLogs}
}

// GetCallLogs handles GET /api/v1/admin/logs with page/limit pagination.
func (h *LogHandler) GetCallLogs(w http.ResponseWriter, r *http.Request) {
	if h.callLogs == nil {
		response.Error(w, apierror.InternalError("call log not configured"))
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	entries, total, err := h.callLogs.List(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to fetch call logs"))
		return
	}

	response.OK(w, map[string]interface{}{
		"data":  entries,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}
