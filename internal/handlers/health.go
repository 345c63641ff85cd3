package handlers

import (
	"net/http"
	"todoList/internal/handlers/dto"
	"todoList/internal/worker"
)

const (
	statusOK          = "ok"
	statusUnavailable = "unavailable"
)

// HealthCheck не проходит через renderError: 503 здесь - штатный ответ
func (h *TodoHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.Health == nil {
		resp := dto.HealthResponse{Service: serviceName, Status: statusOK, Store: statusOK}
		code := http.StatusOK
		if err := h.TodoService.HealthCheck(r.Context()); err != nil {
			resp.Status, resp.Store, resp.Error = statusUnavailable, statusUnavailable, err.Error()
			code = http.StatusServiceUnavailable
		}
		responseWithJSON(w, code, toPayload("health", resp))
		return
	}

	status := h.Health.Status()
	if status.CheckedAt.IsZero() {
		status = h.Health.Check(r.Context())
	}

	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	responseWithJSON(w, code, toPayload("health", fromStatus(status)))
}

func fromStatus(s worker.Status) dto.HealthResponse {
	resp := dto.HealthResponse{
		Service:   serviceName,
		Status:    statusOK,
		Store:     statusOK,
		CheckedAt: &s.CheckedAt,
		Process: &dto.Process{
			PID:        s.PID,
			RSSBytes:   s.RSSBytes,
			Goroutines: s.Goroutines,
		},
	}
	if !s.Healthy {
		resp.Status = statusUnavailable
		resp.Store = statusUnavailable
		resp.Error = s.Error
	}
	if s.MemTotalBytes > 0 {
		resp.Host = &dto.Host{
			MemoryUsedPercent: s.MemUsedPercent,
			MemoryTotalBytes:  s.MemTotalBytes,
		}
	}
	return resp
}
