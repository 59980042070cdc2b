package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/cleancare-api/internal/config"
	"github.com/Dan9191/cleancare-api/internal/middleware"
	"github.com/Dan9191/cleancare-api/internal/service"
)

// NewRouter wires every route with its middleware chain.
// HTTP metrics are registered on reg and exposed at /metrics.
func NewRouter(svc *service.Service, log *logrus.Logger, cfg *config.Config, reg *prometheus.Registry) *mux.Router {
	h := NewHandler(svc, log)
	metrics := middleware.NewMetrics(reg)
	limiter := middleware.NewIPRateLimiter(cfg.LoginRatePerMinute, cfg.LoginRateBurst)
	protect := middleware.AuthMiddleware(svc, log)

	// Router.Use is skipped when nothing matches, so the fallbacks get the chain directly.
	chain := func(next http.Handler) http.Handler {
		return middleware.RequestID(middleware.Logging(log)(metrics.Middleware(next)))
	}

	// Routes stay on one router: nested subrouters turn a method mismatch into a 404.
	r := mux.NewRouter()
	r.NotFoundHandler = chain(http.HandlerFunc(h.NotFound))
	r.MethodNotAllowedHandler = chain(http.HandlerFunc(h.MethodNotAllowed))
	r.Use(middleware.RequestID, middleware.Logging(log), metrics.Middleware)

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	// Public routes
	r.HandleFunc("/api/", h.Root).Methods(http.MethodGet)
	r.Handle("/api/auth/login/", limiter.Limit(http.HandlerFunc(h.Login))).Methods(http.MethodPost)
	r.Handle("/api/auth/refresh/", limiter.Limit(http.HandlerFunc(h.Refresh))).Methods(http.MethodPost)

	// Protected routes
	routes := []struct {
		path    string
		method  string
		handler http.HandlerFunc
	}{
		{"/api/auth/profile/", http.MethodGet, h.Profile},
		{"/api/dashboard/stats/", http.MethodGet, h.DashboardStats},

		{"/api/users/", http.MethodGet, h.ListUsers},
		{"/api/users/", http.MethodPost, h.CreateUser},
		{"/api/users/{id}/", http.MethodGet, h.GetUser},
		{"/api/users/{id}/", http.MethodPut, h.UpdateUser},
		{"/api/users/{id}/", http.MethodPatch, h.PartialUpdateUser},
		{"/api/users/{id}/", http.MethodDelete, h.DeleteUser},

		{"/api/complaints/", http.MethodGet, h.ListComplaints},
		{"/api/complaints/", http.MethodPost, h.CreateComplaint},
		{"/api/complaints/{id}/", http.MethodGet, h.GetComplaint},
		{"/api/complaints/{id}/status/", http.MethodPatch, h.UpdateComplaintStatus},
		{"/api/complaints/{id}/review/", http.MethodPost, h.ReviewComplaint},
	}
	for _, rt := range routes {
		r.Handle(rt.path, protect(rt.handler)).Methods(rt.method)
	}

	return r
}
