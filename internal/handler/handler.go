package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/cleancare-api/internal/auth"
	"github.com/Dan9191/cleancare-api/internal/middleware"
	"github.com/Dan9191/cleancare-api/internal/models"
	"github.com/Dan9191/cleancare-api/internal/service"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeError maps service errors onto HTTP responses
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, ve.Fields)
	case errors.Is(err, service.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, service.ErrPermissionDenied):
		writeDetail(w, http.StatusForbidden, "You do not have permission to perform this action.")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
	case errors.Is(err, service.ErrUserInactive):
		writeDetail(w, http.StatusUnauthorized, "User is inactive.")
	case errors.Is(err, service.ErrInvalidToken):
		writeDetail(w, http.StatusUnauthorized, "Token is invalid or expired")
	default:
		h.log.WithFields(logrus.Fields{
			"request_id": middleware.RequestIDFromContext(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"error":      err,
		}).Error("Request failed")
		writeDetail(w, http.StatusInternalServerError, "Internal server error.")
	}
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeDetail(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
	return false
}

// pathID parses the {id} route variable. Malformed ids cannot match a record.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return id, true
}

func caller(r *http.Request) *models.User {
	u, _ := auth.UserFromContext(r.Context())
	return u
}

// Health reports whether the store is reachable
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ping(r.Context()); err != nil {
		h.log.WithError(err).Warn("Health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NotFound answers unknown paths in the API's error format
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, http.StatusNotFound, "Not found.")
}

// MethodNotAllowed answers known paths hit with an unsupported method
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", r.Method))
}
