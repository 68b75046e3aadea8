package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/stgabriel/parishhub/internal/auth"
	"github.com/stgabriel/parishhub/internal/store"
)

type UserHandler struct {
	users  *store.UserStore
	logger *slog.Logger
}

func NewUserHandler(users *store.UserStore, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// Me handles GET /api/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByEmail(auth.Email(r.Context()))
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load profile"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// SetDigest handles PUT /api/me/digest
func (h *UserHandler) SetDigest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	userEmail := auth.Email(r.Context())
	if err := h.users.SetDigestEnabled(userEmail, req.Enabled); err != nil {
		h.logger.Error("set digest preference", "email", userEmail, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update preference"})
		return
	}

	user, err := h.users.GetByEmail(userEmail)
	if err != nil || user == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to reload profile"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// SetRole handles PUT /api/admin/users/{email}/role
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Role != "staff" && req.Role != "admin" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role must be staff or admin"})
		return
	}

	targetEmail := r.PathValue("email")
	user, err := h.users.GetByEmail(targetEmail)
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load user"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}

	if err := h.users.SetRole(targetEmail, req.Role); err != nil {
		h.logger.Error("set role", "email", targetEmail, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update role"})
		return
	}

	user.Role = req.Role
	writeJSON(w, http.StatusOK, user)
}
