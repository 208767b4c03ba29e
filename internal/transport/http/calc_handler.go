package http

import (
	"encoding/json"
	"net/http"

	"github.com/opsdash/opsdash/internal/upstream"
)

// CalcPlans lists billing plans
// @Summary Billing Plans
// @Description Billing plans offered to clients
// @Tags Calc
// @Produce json
// @Security BearerAuth
// @Success 200 {array} upstream.Plan
// @Failure 502 {object} map[string]string
// @Router /calc/plans [get]
func (h *Handler) CalcPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.calc.Plans(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to load plans")
		return
	}

	respondJSON(w, http.StatusOK, plans)
}

// CalcEstimate computes a price estimate
// @Summary Billing Estimate
// @Description Price breakdown for a plan, lead volume and seat count
// @Tags Calc
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body upstream.EstimateRequest true "Estimate parameters"
// @Success 200 {object} upstream.Estimate
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /calc/estimate [post]
func (h *Handler) CalcEstimate(w http.ResponseWriter, r *http.Request) {
	var req upstream.EstimateRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlanID == "" {
		respondError(w, http.StatusBadRequest, "plan_id is required")
		return
	}

	estimate, err := h.calc.Estimate(r.Context(), req)
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to compute estimate")
		return
	}

	respondJSON(w, http.StatusOK, estimate)
}

// CalcSummary returns the platform-wide billing aggregate
// @Summary Billing Summary
// @Description Active subscriptions and monthly revenue
// @Tags Calc
// @Produce json
// @Security BearerAuth
// @Success 200 {object} upstream.BillingSummary
// @Failure 502 {object} map[string]string
// @Router /calc/summary [get]
func (h *Handler) CalcSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.calc.Summary(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to load billing summary")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
