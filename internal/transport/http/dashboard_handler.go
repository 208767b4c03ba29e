// Copyright 2026 The OpsDash Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opsdash/opsdash/internal/investigate"
	"github.com/opsdash/opsdash/internal/upstream"
)

// DashboardStats returns the aggregated overview for a period
// @Summary Dashboard Stats
// @Description Aggregate metrics from all upstream services for a period
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param period query string false "today, yesterday, 7d, 30d or custom"
// @Param date_from query string false "Custom range start (YYYY-MM-DD)"
// @Param date_to query string false "Custom range end (YYYY-MM-DD)"
// @Success 200 {object} dashboard.Stats
// @Router /dashboard/stats [get]
func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.dashboardService.Stats(r.Context(), requestRange(r)))
}

// DashboardActivity returns the recent-activity feed
// @Summary Recent Activity
// @Description Recent lead events across all clients for a period
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param period query string false "today, yesterday, 7d, 30d or custom"
// @Success 200 {array} upstream.ActivityEntry
// @Router /dashboard/activity [get]
func (h *Handler) DashboardActivity(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.dashboardService.Activity(r.Context(), requestRange(r)))
}

// ClientsPreview returns the registry joined with conversation counts
// @Summary Clients Preview
// @Description Registered clients with live conversation counts
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dashboard.ClientPreview
// @Router /dashboard/clients-preview [get]
func (h *Handler) ClientsPreview(w http.ResponseWriter, r *http.Request) {
	previews, err := h.dashboardService.ClientsPreview(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load clients")
		return
	}

	respondJSON(w, http.StatusOK, previews)
}

// ForceRefresh triggers a background refresh outside the timer
// @Summary Force Refresh
// @Description Refresh the cached overview now; reports whether a refresh was already running
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router /dashboard/refresh [post]
func (h *Handler) ForceRefresh(w http.ResponseWriter, r *http.Request) {
	refreshed := h.refresher.TryRefresh(r.Context())

	respondJSON(w, http.StatusOK, map[string]any{
		"refreshed": refreshed,
		"snapshot":  h.refresher.Snapshot(),
	})
}

// Investigate runs a fresh search over lead event logs
// @Summary Investigate
// @Description Search lead event logs by free text, client and source
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param q query string false "Free-text query"
// @Param client query string false "Client slug"
// @Param source query string false "Lead source"
// @Param period query string false "today, yesterday, 7d, 30d or custom"
// @Success 200 {array} upstream.EventRecord
// @Failure 502 {object} map[string]string
// @Router /dashboard/investigate [get]
func (h *Handler) Investigate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := h.investigateService.Search(r.Context(), upstream.InvestigateParams{
		Query:      q.Get("q"),
		ClientSlug: q.Get("client"),
		Source:     q.Get("source"),
		Range:      requestRange(r),
	})
	if err != nil {
		if errors.Is(err, investigate.ErrSuperseded) {
			// A newer search owns the result set now; this response would be
			// stale the moment it renders.
			respondError(w, http.StatusConflict, "superseded by a newer search")
			return
		}
		respondError(w, http.StatusBadGateway, "investigation search failed")
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// InvestigateFilter refilters the last search result by category
// @Summary Investigate Filter
// @Description Apply a categorical chip over the last search result, no refetch
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param chip query string false "all, errors, sales or new_leads"
// @Success 200 {array} upstream.EventRecord
// @Router /dashboard/investigate/filter [get]
func (h *Handler) InvestigateFilter(w http.ResponseWriter, r *http.Request) {
	chip := investigate.Chip(r.URL.Query().Get("chip"))
	respondJSON(w, http.StatusOK, h.investigateService.Filter(chip))
}

// ClientLogs returns the event log of one client
// @Summary Client Logs
// @Description Lead event log of one client for a period
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param clientSlug path string true "Client slug"
// @Param period query string false "today, yesterday, 7d, 30d or custom"
// @Success 200 {array} upstream.EventRecord
// @Failure 502 {object} map[string]string
// @Router /dashboard/clients/{clientSlug}/logs [get]
func (h *Handler) ClientLogs(w http.ResponseWriter, r *http.Request) {
	records, err := h.leads.ClientLogs(r.Context(), chi.URLParam(r, "clientSlug"), requestRange(r))
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to load client logs")
		return
	}

	respondJSON(w, http.StatusOK, records)
}
