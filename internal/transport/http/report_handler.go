package http

import (
	"encoding/json"
	"net/http"

	"github.com/opsdash/opsdash/internal/audit"
)

// ReportExecutions lists report runs
// @Summary Report Executions
// @Description Report runs recorded by the reporting service for a period
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param period query string false "today, yesterday, 7d, 30d or custom"
// @Success 200 {array} upstream.Execution
// @Failure 502 {object} map[string]string
// @Router /reports [get]
func (h *Handler) ReportExecutions(w http.ResponseWriter, r *http.Request) {
	executions, err := h.reports.Executions(r.Context(), requestRange(r))
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to load executions")
		return
	}

	respondJSON(w, http.StatusOK, executions)
}

// ReportCounts returns the per-status execution breakdown
// @Summary Report Counts
// @Description Report runs broken down by status
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} upstream.ExecutionCounts
// @Failure 502 {object} map[string]string
// @Router /reports/counts [get]
func (h *Handler) ReportCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.reports.Counts(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to load execution counts")
		return
	}

	respondJSON(w, http.StatusOK, counts)
}

// TriggerReportRequest names the client a report should run for
type TriggerReportRequest struct {
	ClientSlug string `json:"client_slug" binding:"required" example:"acme"`
}

// TriggerReport starts a report run for one client
// @Summary Trigger Report
// @Description Start a report run for one client
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TriggerReportRequest true "Target client"
// @Success 202 {object} upstream.Execution
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /reports/trigger [post]
func (h *Handler) TriggerReport(w http.ResponseWriter, r *http.Request) {
	var req TriggerReportRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ClientSlug == "" {
		respondError(w, http.StatusBadRequest, "client_slug is required")
		return
	}

	execution, err := h.reports.Trigger(r.Context(), req.ClientSlug)
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to trigger report")
		return
	}

	h.auditLogger.Log(r.Context(), audit.Event{
		Type:      audit.TypeReportTriggered,
		ActorID:   GetUserID(r.Context()),
		Resource:  req.ClientSlug,
		IPAddress: getIPAddress(r),
		UserAgent: r.UserAgent(),
		Metadata:  map[string]any{"execution_id": execution.ID},
	})

	respondJSON(w, http.StatusAccepted, execution)
}
