package handler

import "net/http"

// DashboardStats returns aggregate complaint and user figures
func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.DashboardStats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type apiRoot struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

var rootResponse = apiRoot{
	Message: "Clean Care API",
	Endpoints: map[string]string{
		"login":           "/api/auth/login/",
		"refresh":         "/api/auth/refresh/",
		"profile":         "/api/auth/profile/",
		"users":           "/api/users/",
		"dashboard_stats": "/api/dashboard/stats/",
		"complaints":      "/api/complaints/",
	},
}

// Root lists the API entry points. It needs no authentication.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse)
}
