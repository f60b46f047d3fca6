package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/crewbooks/crewbooks/internal/api/dto"
	"github.com/crewbooks/crewbooks/internal/model/user"
	"github.com/crewbooks/crewbooks/internal/serviceerrs"
	"github.com/crewbooks/crewbooks/internal/utils/auth"
)

// ListUsers returns the directory, optionally narrowed by ?role=.
func (h *HTTPHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	var role *user.Role
	if raw := r.URL.Query().Get("role"); raw != "" && raw != "all" {
		parsed, err := user.ParseRole(raw)
		if err != nil {
			h.writeError(w, r, serviceerrs.NewValidation("role", err.Error()))
			return
		}
		role = &parsed
	}

	us, err := h.users.List(r.Context(), role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, dto.NewUserResponses(us))
}

func (h *HTTPHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, dto.NewUserResponse(u))
}

func (h *HTTPHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := req.IsValid(); err != nil {
		h.writeError(w, r, serviceerrs.NewValidation("body", err.Error()))
		return
	}

	role, err := user.ParseRole(req.Role)
	if err != nil {
		h.writeError(w, r, serviceerrs.NewValidation("role", err.Error()))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	u := user.User{
		CreatedAt:         time.Now().UTC(),
		ID:                uuid.NewString(),
		Username:          req.Username,
		FullName:          req.FullName,
		PasswordHash:      hash,
		Role:              role,
		AssignedManagerID: req.AssignedManagerID,
		Active:            true,
	}
	if err := h.users.Create(r.Context(), &u); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, dto.NewUserResponse(u))
}

// AssignManager routes a worker's future submissions to the given manager.
func (h *HTTPHandler) AssignManager(w http.ResponseWriter, r *http.Request) {
	workerID := chi.URLParam(r, "id")

	var req dto.AssignManagerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.ManagerID == "" {
		h.writeError(w, r, serviceerrs.NewValidation("manager_id", "is required"))
		return
	}

	worker, err := h.users.FindByID(r.Context(), workerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if worker.Role != user.RoleWorker {
		h.writeError(w, r,
			serviceerrs.NewValidation("id", "assignee must be a worker"))
		return
	}

	manager, err := h.users.FindByID(r.Context(), req.ManagerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if manager.Role != user.RoleManager {
		h.writeError(w, r,
			serviceerrs.NewValidation("manager_id", "target must be a manager"))
		return
	}

	if err := h.users.AssignManager(r.Context(), workerID, req.ManagerID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
