package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/opsdash/opsdash/internal/user"
)

// ListUsers lists operator accounts
// @Summary List Operators
// @Description List operator accounts with pagination
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} user.User
// @Router /users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	users, err := h.userService.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	respondJSON(w, http.StatusOK, users)
}

// CreateUserRequest represents a new operator account
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name"`
	Role     string `json:"role" binding:"required" example:"operator"`
	Password string `json:"password" binding:"required"`
}

// CreateUser registers an operator account
// @Summary Create Operator
// @Description Register a new operator account
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateUserRequest true "Account Data"
// @Success 201 {object} user.User
// @Failure 400 {object} map[string]string
// @Router /users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.userService.Create(r.Context(), req.Email, req.Name, req.Role, req.Password)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, u)
}

// GetUser returns one operator account
// @Summary Get Operator
// @Description Fetch one operator account by ID
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Success 200 {object} user.User
// @Failure 404 {object} map[string]string
// @Router /users/{userID} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.userService.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	respondJSON(w, http.StatusOK, u)
}

// UpdateUserRequest carries a partial operator update. Absent fields leave
// the stored value untouched.
type UpdateUserRequest struct {
	Name          *string             `json:"name,omitempty"`
	Role          *string             `json:"role,omitempty"`
	Active        *bool               `json:"active,omitempty"`
	Notifications *user.Notifications `json:"notifications,omitempty"`
}

// UpdateUser applies a partial update to an operator account
// @Summary Update Operator
// @Description Update name, role, active flag or notification preferences
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Param request body UpdateUserRequest true "Fields to update"
// @Success 200 {object} user.User
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/{userID} [put]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.userService.Update(r.Context(), chi.URLParam(r, "userID"), user.UpdateInput{
		Name:          req.Name,
		Role:          req.Role,
		Active:        req.Active,
		Notifications: req.Notifications,
	}, GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, u)
}
