package handler

import (
	"net/http"
	"strconv"

	"github.com/Dan9191/cleancare-api/internal/models"
)

// ListComplaints supports ?status= and ?ward= filters
func (h *Handler) ListComplaints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ComplaintFilter{Status: models.ComplaintStatus(q.Get("status"))}
	if ward := q.Get("ward"); ward != "" {
		n, err := strconv.Atoi(ward)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"ward": {"A valid integer is required."}})
			return
		}
		filter.WardNumber = n
	}

	complaints, err := h.svc.ListComplaints(r.Context(), caller(r), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, complaints)
}

// CreateComplaint handles complaint submission by a citizen
func (h *Handler) CreateComplaint(w http.ResponseWriter, r *http.Request) {
	var in models.ComplaintInput
	if !decode(w, r, &in) {
		return
	}
	c, err := h.svc.CreateComplaint(r.Context(), caller(r), &in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// GetComplaint handles a single complaint lookup
func (h *Handler) GetComplaint(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.GetComplaint(r.Context(), caller(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// UpdateComplaintStatus handles status changes by staff
func (h *Handler) UpdateComplaintStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in models.StatusUpdate
	if !decode(w, r, &in) {
		return
	}
	c, err := h.svc.UpdateComplaintStatus(r.Context(), caller(r), id, &in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ReviewComplaint handles the submitter's rating of a solved complaint
func (h *Handler) ReviewComplaint(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in models.ReviewInput
	if !decode(w, r, &in) {
		return
	}
	c, err := h.svc.ReviewComplaint(r.Context(), caller(r), id, &in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
