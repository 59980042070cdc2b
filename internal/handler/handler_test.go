package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/cleancare-api/internal/middleware"
	"github.com/Dan9191/cleancare-api/internal/models"
	"github.com/Dan9191/cleancare-api/internal/repository"
	"github.com/Dan9191/cleancare-api/internal/service"
	"github.com/Dan9191/cleancare-api/internal/testutil"
)

type testServer struct {
	t      *testing.T
	router *mux.Router
	repo   *repository.Repository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repo := repository.NewRepository(testutil.OpenInMemoryDB(t))
	log, _ := testutil.NullLogger()
	cfg := testutil.Config()
	svc := service.NewService(repo, log, cfg)
	return &testServer{t: t, router: NewRouter(svc, log, cfg, prometheus.NewRegistry()), repo: repo}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/login/", "", map[string]string{"username": username, "password": password})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var pair models.TokenPair
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &pair))
	return pair.Access
}

func (s *testServer) user(username string, staff, super bool) (*models.User, string) {
	s.t.Helper()
	u := testutil.CreateUser(s.t, s.repo, username, "password123", staff, super)
	return u, s.login(username, "password123")
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRoot_IsPublic(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[apiRoot](t, rec)
	assert.NotEmpty(t, body.Message)
	assert.Equal(t, map[string]string{
		"login":           "/api/auth/login/",
		"refresh":         "/api/auth/refresh/",
		"profile":         "/api/auth/profile/",
		"users":           "/api/users/",
		"dashboard_stats": "/api/dashboard/stats/",
		"complaints":      "/api/complaints/",
	}, body.Endpoints)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	alice := testutil.CreateUser(t, s.repo, "alice", "password123", false, false)

	rec := s.do(http.MethodPost, "/api/auth/login/", "", map[string]string{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, decodeBody[map[string]string](t, rec), "detail")

	rec = s.do(http.MethodPost, "/api/auth/login/", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decodeBody[map[string][]string](t, rec)
	assert.Equal(t, []string{"This field is required."}, fields["username"])

	rec = s.do(http.MethodPost, "/api/auth/login/", "", map[string]string{"username": "alice", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code)
	pair := decodeBody[models.TokenPair](t, rec)

	rec = s.do(http.MethodPost, "/api/auth/refresh/", "", map[string]string{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	access := decodeBody[models.AccessToken](t, rec).Access
	require.NotEmpty(t, access)

	rec = s.do(http.MethodPost, "/api/auth/refresh/", "", map[string]string{"refresh": pair.Access})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/auth/profile/", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decodeBody[map[string]any](t, rec)
	assert.Equal(t, float64(alice.ID), profile["id"])
	assert.Equal(t, "alice", profile["username"])
	assert.NotContains(t, profile, "password")
	assert.NotContains(t, profile, "password_hash")

	// refresh tokens are not accepted as bearer credentials
	rec = s.do(http.MethodGet, "/api/auth/profile/", pair.Refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMalformedJSON(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login/", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[map[string]string](t, rec)["detail"], "JSON parse error")
}

func TestUsers_ListScoping(t *testing.T) {
	s := newTestServer(t)
	alice, aliceTok := s.user("alice", false, false)
	_, _ = s.user("bob", false, false)
	_, rootTok := s.user("root", true, true)

	rec := s.do(http.MethodGet, "/api/users/", aliceTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decodeBody[[]models.User](t, rec)
	require.Len(t, users, 1)
	assert.Equal(t, alice.ID, users[0].ID)

	rec = s.do(http.MethodGet, "/api/users/", rootTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]models.User](t, rec), 3)

	rec = s.do(http.MethodGet, "/api/users/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUsers_DetailOfOtherUserIs404(t *testing.T) {
	s := newTestServer(t)
	_, aliceTok := s.user("alice", false, false)
	bob, _ := s.user("bob", false, false)

	rec := s.do(http.MethodGet, fmt.Sprintf("/api/users/%d/", bob.ID), aliceTok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found.", decodeBody[map[string]string](t, rec)["detail"])

	rec = s.do(http.MethodGet, "/api/users/abc/", aliceTok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsers_CRUD(t *testing.T) {
	s := newTestServer(t)
	alice, aliceTok := s.user("alice", false, false)
	_, rootTok := s.user("root", true, true)

	newUser := map[string]any{"username": "ward_admin", "password": "password123", "email": "wa@example.com", "is_staff": true}
	rec := s.do(http.MethodPost, "/api/users/", aliceTok, newUser)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/users/", rootTok, newUser)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[models.User](t, rec)
	assert.True(t, created.IsStaff)

	rec = s.do(http.MethodPost, "/api/users/", rootTok, newUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[map[string][]string](t, rec), "username")

	path := fmt.Sprintf("/api/users/%d/", alice.ID)
	rec = s.do(http.MethodPatch, path, aliceTok, map[string]any{"first_name": "Alice", "is_superuser": true, "id": 999})
	require.Equal(t, http.StatusOK, rec.Code)
	patched := decodeBody[models.User](t, rec)
	assert.Equal(t, alice.ID, patched.ID)
	assert.Equal(t, "Alice", patched.FirstName)
	assert.False(t, patched.IsSuperuser)
	assert.True(t, patched.DateJoined.Equal(alice.DateJoined))

	rec = s.do(http.MethodPut, path, aliceTok, map[string]any{"first_name": "Al"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, path, aliceTok, map[string]any{"username": "alice2", "last_name": "Liddell"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice2", decodeBody[models.User](t, rec).Username)

	rec = s.do(http.MethodDelete, path, aliceTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodDelete, fmt.Sprintf("/api/users/%d/", created.ID), rootTok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodGet, fmt.Sprintf("/api/users/%d/", created.ID), rootTok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardStats(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/dashboard/stats/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	citizen, tok := s.user("citizen", false, false)
	statuses := []models.ComplaintStatus{models.StatusPending, models.StatusInProgress, models.StatusSolved}
	for i := 0; i < 1028; i++ {
		testutil.CreateComplaint(t, s.repo, citizen.ID, i%5+1, statuses[i%3])
	}

	rec = s.do(http.MethodGet, "/api/dashboard/stats/", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	raw := decodeBody[map[string]json.RawMessage](t, rec)
	for _, field := range []string{
		"total_complaints", "solved_complaints", "pending_complaints", "in_progress_complaints",
		"total_users", "total_admins", "total_super_admins", "satisfaction_score", "avg_service_time",
		"complaints_by_status", "ward_performance", "weekly_trend",
	} {
		assert.Contains(t, raw, field)
	}

	stats := decodeBody[models.DashboardStats](t, rec)
	assert.Equal(t, int64(1028), stats.TotalComplaints)
	var sum int64
	for _, row := range stats.ComplaintsByStatus {
		sum += row.Count
	}
	assert.Equal(t, stats.TotalComplaints, sum)
	assert.Len(t, stats.WardPerformance, 5)
	assert.Len(t, stats.WeeklyTrend.Labels, 7)
}

func TestComplaints(t *testing.T) {
	s := newTestServer(t)
	_, aliceTok := s.user("alice", false, false)
	_, bobTok := s.user("bob", false, false)
	_, staffTok := s.user("staff", true, false)

	rec := s.do(http.MethodPost, "/api/complaints/", aliceTok, map[string]any{"title": "Broken streetlight", "ward_number": 4})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := decodeBody[models.Complaint](t, rec)
	assert.Equal(t, models.StatusPending, c.Status)
	path := fmt.Sprintf("/api/complaints/%d/", c.ID)

	rec = s.do(http.MethodPost, "/api/complaints/", aliceTok, map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, bobTok, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, path, staffTok, nil).Code)

	rec = s.do(http.MethodGet, "/api/complaints/", bobTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]models.Complaint](t, rec))

	rec = s.do(http.MethodGet, "/api/complaints/?ward=4&status=pending", staffTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]models.Complaint](t, rec), 1)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/complaints/?ward=x", staffTok, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/complaints/?status=closed", staffTok, nil).Code)

	rec = s.do(http.MethodPatch, path+"status/", aliceTok, map[string]string{"status": "solved"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, path+"review/", aliceTok, map[string]any{"rating": 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPatch, path+"status/", staffTok, map[string]string{"status": "solved"})
	require.Equal(t, http.StatusOK, rec.Code)
	solved := decodeBody[models.Complaint](t, rec)
	assert.Equal(t, models.StatusSolved, solved.Status)
	assert.NotNil(t, solved.ResolvedAt)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, path+"review/", staffTok, map[string]any{"rating": 5}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, path+"review/", bobTok, map[string]any{"rating": 5}).Code)

	rec = s.do(http.MethodPost, path+"review/", aliceTok, map[string]any{"rating": 5, "comment": "Fixed in a day"})
	require.Equal(t, http.StatusOK, rec.Code)
	reviewed := decodeBody[models.Complaint](t, rec)
	require.NotNil(t, reviewed.Rating)
	assert.Equal(t, 5, *reviewed.Rating)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, path+"review/", aliceTok, map[string]any{"rating": 4}).Code)
}

func TestUnknownPathAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/nope/", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found.", decodeBody[map[string]string](t, rec)["detail"])
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	s.do(http.MethodGet, "/api/", "", nil)
	rec = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cleancare_http_requests_total{method="GET",route="/api/",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), `cleancare_http_requests_total{method="GET",route="unmatched",status="404"} 1`)

	rec = s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	_, tok := s.user("alice", false, false)

	tests := []struct {
		method string
		path   string
		token  string
	}{
		{http.MethodDelete, "/api/", ""},
		{http.MethodGet, "/api/auth/login/", ""},
		{http.MethodPost, "/api/dashboard/stats/", ""},
		{http.MethodPut, "/api/complaints/1/status/", tok},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := s.do(tt.method, tt.path, tt.token, nil)
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Equal(t, fmt.Sprintf("Method %q not allowed.", tt.method), decodeBody[map[string]string](t, rec)["detail"])
			assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
		})
	}

	rec := s.do(http.MethodGet, "/metrics", "", nil)
	assert.Contains(t, rec.Body.String(), `cleancare_http_requests_total{method="DELETE",route="unmatched",status="405"} 1`)
}

func TestUsers_StatusAndFilters(t *testing.T) {
	s := newTestServer(t)
	alice, aliceTok := s.user("alice", false, false)
	_, _ = s.user("bob", false, false)
	root, rootTok := s.user("root", true, true)
	path := fmt.Sprintf("/api/users/%d/", alice.ID)

	// ignored for non-superusers
	rec := s.do(http.MethodPatch, path, aliceTok, map[string]any{"is_active": false})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[models.User](t, rec).IsActive)

	rec = s.do(http.MethodPatch, fmt.Sprintf("/api/users/%d/", root.ID), rootTok, map[string]any{"is_active": false})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[map[string][]string](t, rec), "is_active")

	rec = s.do(http.MethodPatch, path, rootTok, map[string]any{"is_active": false})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeBody[models.User](t, rec).IsActive)

	rec = s.do(http.MethodGet, "/api/auth/profile/", aliceTok, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User is inactive.", decodeBody[map[string]string](t, rec)["detail"])

	rec = s.do(http.MethodPost, "/api/auth/login/", "", map[string]string{"username": "alice", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/users/?is_active=false", rootTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decodeBody[[]models.User](t, rec)
	require.Len(t, users, 1)
	assert.Equal(t, alice.ID, users[0].ID)

	rec = s.do(http.MethodGet, "/api/users/?search=BO", rootTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users = decodeBody[[]models.User](t, rec)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)

	rec = s.do(http.MethodGet, "/api/users/?is_active=maybe", rootTok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"Must be a valid boolean."}, decodeBody[map[string][]string](t, rec)["is_active"])

	rec = s.do(http.MethodPatch, path, rootTok, map[string]any{"is_active": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/auth/profile/", aliceTok, nil).Code)
}
