package handlers

import (
	"fmt"
	"net/http"

	"github.com/crewbooks/crewbooks/internal/api/dto"
	"github.com/crewbooks/crewbooks/internal/serviceerrs"
	"github.com/crewbooks/crewbooks/internal/utils/auth"
)

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	u, err := h.users.FindByUsername(r.Context(), req.Username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !u.Active {
		h.writeError(w, r, fmt.Errorf("user %s: %w", u.Username, serviceerrs.ErrUserInactive))
		return
	}
	if !auth.VerifyPassword(u.PasswordHash, req.Password) {
		h.writeError(w, r, serviceerrs.ErrWrongPassword)
		return
	}

	cookie, err := auth.Authenticate(u.ID, u.Role, h.secret)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &cookie)
	h.writeJSON(w, r, http.StatusOK, dto.LoginResponse{
		Token:    cookie.Value,
		ID:       u.ID,
		Username: u.Username,
		Role:     string(u.Role),
		FullName: u.FullName,
	})
}
