package http

import (
	"context"
	"net/http"
	"time"

	"github.com/opsdash/opsdash/internal/sdr"
)

// pairingWait caps how long one long-poll pairing request may block.
const pairingWait = 2 * time.Minute

// SDRConversations lists chatbot conversations
// @Summary SDR Conversations
// @Description Chatbot conversations, optionally filtered by client
// @Tags SDR
// @Produce json
// @Security BearerAuth
// @Param client query string false "Client slug"
// @Success 200 {array} upstream.Conversation
// @Failure 502 {object} map[string]string
// @Router /sdr/conversations [get]
func (h *Handler) SDRConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.sdr.Conversations(r.Context(), r.URL.Query().Get("client"))
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to load conversations")
		return
	}

	respondJSON(w, http.StatusOK, conversations)
}

// SDRLeads lists chatbot pipeline leads
// @Summary SDR Leads
// @Description Leads tracked by the chatbot pipeline, optionally filtered by client
// @Tags SDR
// @Produce json
// @Security BearerAuth
// @Param client query string false "Client slug"
// @Success 200 {array} upstream.SDRLead
// @Failure 502 {object} map[string]string
// @Router /sdr/leads [get]
func (h *Handler) SDRLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.sdr.Leads(r.Context(), r.URL.Query().Get("client"))
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to load leads")
		return
	}

	respondJSON(w, http.StatusOK, leads)
}

// SDRMetrics returns aggregate chatbot metrics
// @Summary SDR Metrics
// @Description Aggregate chatbot metrics for a period
// @Tags SDR
// @Produce json
// @Security BearerAuth
// @Param period query string false "today, yesterday, 7d, 30d or custom"
// @Success 200 {object} upstream.SDRMetrics
// @Failure 502 {object} map[string]string
// @Router /sdr/metrics [get]
func (h *Handler) SDRMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.sdr.Metrics(r.Context(), requestRange(r))
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to load metrics")
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}

// WhatsAppStatus returns the gateway pairing state of one instance
// @Summary WhatsApp Status
// @Description Pairing state and QR code of one WhatsApp instance
// @Tags SDR
// @Produce json
// @Security BearerAuth
// @Param instance query string true "Instance ID"
// @Success 200 {object} upstream.ConnectionStatus
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /sdr/whatsapp/status [get]
func (h *Handler) WhatsAppStatus(w http.ResponseWriter, r *http.Request) {
	instanceID := r.URL.Query().Get("instance")
	if instanceID == "" {
		respondError(w, http.StatusBadRequest, "instance is required")
		return
	}

	status, err := h.sdr.WhatsAppStatus(r.Context(), instanceID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to load whatsapp status")
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// WhatsAppWait long-polls the pairing state of one instance
// @Summary Wait for WhatsApp Pairing
// @Description Poll the gateway until the instance connects or the request times out; returns the last observed status
// @Tags SDR
// @Produce json
// @Security BearerAuth
// @Param instance query string true "Instance ID"
// @Success 200 {object} upstream.ConnectionStatus
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /sdr/whatsapp/wait [get]
func (h *Handler) WhatsAppWait(w http.ResponseWriter, r *http.Request) {
	instanceID := r.URL.Query().Get("instance")
	if instanceID == "" {
		respondError(w, http.StatusBadRequest, "instance is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pairingWait)
	defer cancel()

	watcher := sdr.NewWatcher(h.sdr, h.whatsappInterval)
	watcher.Watch(ctx, instanceID)

	last := watcher.Last()
	if last == nil {
		respondError(w, http.StatusBadGateway, "whatsapp status unavailable")
		return
	}

	respondJSON(w, http.StatusOK, last)
}
