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
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/opsdash/opsdash/internal/client"
)

// ListClients lists registered clients
// @Summary List Clients
// @Description List registered clients with pagination
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} client.Client
// @Router /admin/clients [get]
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	clients, err := h.clientService.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list clients")
		return
	}

	respondJSON(w, http.StatusOK, clients)
}

// CreateClientRequest represents a new client registration
type CreateClientRequest struct {
	Slug          string `json:"slug" binding:"required" example:"acme"`
	Name          string `json:"name" binding:"required" example:"Acme Corp"`
	InstanceID    string `json:"instance_id"`
	SpreadsheetID string `json:"spreadsheet_id"`
}

// CreateClient registers a new client
// @Summary Create Client
// @Description Register a new client in the platform
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateClientRequest true "Client Data"
// @Success 201 {object} client.Client
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/clients [post]
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.clientService.Create(r.Context(), client.CreateInput{
		Slug:          req.Slug,
		Name:          req.Name,
		InstanceID:    req.InstanceID,
		SpreadsheetID: req.SpreadsheetID,
	}, GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, client.ErrSlugTaken) {
			respondError(w, http.StatusConflict, "slug already in use")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, c)
}

// GetClient retrieves one client
// @Summary Get Client
// @Description Retrieve a client by ID
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param clientID path string true "Client ID"
// @Success 200 {object} client.Client
// @Failure 404 {object} map[string]string
// @Router /admin/clients/{clientID} [get]
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	c, err := h.clientService.Get(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		respondError(w, http.StatusNotFound, "client not found")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// UpdateClientRequest carries a partial client update. Absent fields leave
// the stored value untouched.
type UpdateClientRequest struct {
	Name          *string `json:"name,omitempty"`
	InstanceID    *string `json:"instance_id,omitempty"`
	SpreadsheetID *string `json:"spreadsheet_id,omitempty"`
	Active        *bool   `json:"active,omitempty"`
}

// UpdateClient applies a partial update to a client
// @Summary Update Client
// @Description Update name, instance, spreadsheet or active flag
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientID path string true "Client ID"
// @Param request body UpdateClientRequest true "Fields to update"
// @Success 200 {object} client.Client
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/clients/{clientID} [put]
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	var req UpdateClientRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.clientService.Update(r.Context(), chi.URLParam(r, "clientID"), client.UpdateInput{
		Name:          req.Name,
		InstanceID:    req.InstanceID,
		SpreadsheetID: req.SpreadsheetID,
		Active:        req.Active,
	}, GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, client.ErrClientNotFound) {
			respondError(w, http.StatusNotFound, "client not found")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// DeleteClient removes a client from the registry
// @Summary Delete Client
// @Description Remove a client from the registry
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param clientID path string true "Client ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/clients/{clientID} [delete]
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := h.clientService.Delete(r.Context(), chi.URLParam(r, "clientID"), GetUserID(r.Context())); err != nil {
		if errors.Is(err, client.ErrClientNotFound) {
			respondError(w, http.StatusNotFound, "client not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete client")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "client deleted successfully",
	})
}
