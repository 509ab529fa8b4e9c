package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/impservers/impchat/internal/api"
	"github.com/impservers/impchat/internal/domain"
	"github.com/impservers/impchat/internal/middleware"
	"github.com/impservers/impchat/internal/utils"
)

// Admin surface. Routes are mounted behind LeaderOnly, services re-check per
// action.

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	users, err := h.account.ListUsers(user)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	response := api.UsersResponse{Users: make([]api.UserResponse, 0, len(users))}
	for _, u := range users {
		response.Users = append(response.Users, api.UserResponse{
			Id:      u.Id,
			Name:    u.Name,
			Role:    u.Role,
			Created: u.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, response)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body api.CreateUserRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if _, err := h.account.CreateUser(user, body.Name, body.Password, domain.Role(body.Role)); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	name := chi.URLParam(r, "name")

	var body api.UpdateUserRequest
	if err := utils.Decode(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.account.UpdateUser(user, name, domain.Role(body.Role), body.Password); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.account.DeleteUser(user, chi.URLParam(r, "name")); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
