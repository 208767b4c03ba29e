package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opsdash/opsdash/internal/audit"
)

// ListAlerts lists open platform alerts
// @Summary List Alerts
// @Description Open platform alerts raised by the lead automation service
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} upstream.Alert
// @Failure 502 {object} map[string]string
// @Router /alerts [get]
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.leads.Alerts(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to load alerts")
		return
	}

	respondJSON(w, http.StatusOK, alerts)
}

// AckAlert acknowledges one alert
// @Summary Acknowledge Alert
// @Description Mark one alert as acknowledged
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param alertID path string true "Alert ID"
// @Success 200 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /alerts/{alertID}/ack [post]
func (h *Handler) AckAlert(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alertID")

	if err := h.leads.AckAlert(r.Context(), alertID); err != nil {
		respondError(w, http.StatusBadGateway, "failed to acknowledge alert")
		return
	}

	h.auditLogger.Log(r.Context(), audit.Event{
		Type:      audit.TypeAlertAcked,
		ActorID:   GetUserID(r.Context()),
		Resource:  alertID,
		IPAddress: getIPAddress(r),
		UserAgent: r.UserAgent(),
	})

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "alert acknowledged",
	})
}
