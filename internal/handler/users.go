package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Dan9191/cleancare-api/internal/models"
)

// ListUsers handles the user listing. Superusers may filter with ?search= and ?is_active=.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.UserFilter{Search: strings.TrimSpace(q.Get("search"))}
	if raw := q.Get("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"is_active": {"Must be a valid boolean."}})
			return
		}
		f.IsActive = &active
	}
	users, err := h.svc.ListUsers(r.Context(), caller(r), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// CreateUser handles account creation by a superuser
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if !decode(w, r, &in) {
		return
	}
	user, err := h.svc.CreateUser(r.Context(), caller(r), &in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// GetUser handles a single user lookup
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user, err := h.svc.GetUser(r.Context(), caller(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateUser serves PUT
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	h.updateUser(w, r, false)
}

// PartialUpdateUser serves PATCH
func (h *Handler) PartialUpdateUser(w http.ResponseWriter, r *http.Request) {
	h.updateUser(w, r, true)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request, partial bool) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in models.UserInput
	if !decode(w, r, &in) {
		return
	}
	user, err := h.svc.UpdateUser(r.Context(), caller(r), id, &in, partial)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteUser handles account removal
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteUser(r.Context(), caller(r), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
