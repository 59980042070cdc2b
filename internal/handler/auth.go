package handler

import (
	"net/http"

	"github.com/Dan9191/cleancare-api/internal/models"
)

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !decode(w, r, &creds) {
		return
	}
	pair, err := h.svc.Login(r.Context(), &creds)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// Refresh issues a new access token from a refresh token
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if !decode(w, r, &req) {
		return
	}
	tok, err := h.svc.Refresh(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tok)
}

// Profile returns the authenticated user
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, caller(r))
}
