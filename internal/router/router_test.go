package router

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewbooks/crewbooks/internal/config"
	"github.com/crewbooks/crewbooks/internal/model/user"
	"github.com/crewbooks/crewbooks/internal/utils/auth"
)

const testSecret = "test-secret-key"

type stubHandler struct {
	name string
}

func (s stubHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Handler", s.name)
	w.WriteHeader(http.StatusTeapot)
}

type h struct{}

func (h) Login(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "login"}.ServeHTTP(w, r)
}
func (h) Submit(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "submit"}.ServeHTTP(w, r)
}
func (h) Review(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "review"}.ServeHTTP(w, r)
}
func (h) ListMine(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "list_mine"}.ServeHTTP(w, r)
}
func (h) ListPending(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "list_pending"}.ServeHTTP(w, r)
}
func (h) ListAssigned(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "list_assigned"}.ServeHTTP(w, r)
}
func (h) ListAccepted(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "list_accepted"}.ServeHTTP(w, r)
}
func (h) ListAcceptedPaged(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "list_accepted_paged"}.ServeHTTP(w, r)
}
func (h) DirectorList(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "director_list"}.ServeHTTP(w, r)
}
func (h) DirectorPending(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "director_pending"}.ServeHTTP(w, r)
}
func (h) DirectorRejected(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "director_rejected"}.ServeHTTP(w, r)
}
func (h) DirectorSummary(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "director_summary"}.ServeHTTP(w, r)
}
func (h) CurrentStatistics(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "current_statistics"}.ServeHTTP(w, r)
}
func (h) StatisticsHistory(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "statistics_history"}.ServeHTTP(w, r)
}
func (h) HourlyStatistics(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "hourly_statistics"}.ServeHTTP(w, r)
}
func (h) ListNotifications(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "list_notifications"}.ServeHTTP(w, r)
}
func (h) UnreadCount(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "unread_count"}.ServeHTTP(w, r)
}
func (h) MarkRead(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "mark_read"}.ServeHTTP(w, r)
}
func (h) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "mark_all_read"}.ServeHTTP(w, r)
}
func (h) ListUsers(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "list_users"}.ServeHTTP(w, r)
}
func (h) GetUser(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "get_user"}.ServeHTTP(w, r)
}
func (h) CreateUser(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "create_user"}.ServeHTTP(w, r)
}
func (h) AssignManager(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "assign_manager"}.ServeHTTP(w, r)
}
func (h) Ping(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "ping"}.ServeHTTP(w, r)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	r := New(&config.Config{SecretKey: testSecret}, slog.Default())
	r.SetRouter(h{})
	srv := httptest.NewServer(r.GetRouter())
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, srv *httptest.Server,
	method, path string, role *user.Role,
) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, srv.URL+path, http.NoBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if role != nil {
		cookie, err := auth.Authenticate("user-1", *role, []byte(testSecret))
		require.NoError(t, err)
		req.AddCookie(&cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp
}

func TestCustomRouter_Route_happyTests(t *testing.T) {
	srv := newTestServer(t)

	worker := user.RoleWorker
	manager := user.RoleManager
	director := user.RoleDirector

	tests := []struct {
		method   string
		path     string
		role     *user.Role
		wantName string
	}{
		{http.MethodPost, "/api/auth/login", nil, "login"},
		{http.MethodGet, "/ping", nil, "ping"},

		{http.MethodPost, "/api/transactions", &worker, "submit"},
		{http.MethodGet, "/api/transactions/my", &worker, "list_mine"},
		{http.MethodGet, "/api/transactions/accepted", &worker, "list_accepted"},
		{http.MethodGet, "/api/transactions/accepted/paged", &director, "list_accepted_paged"},
		{http.MethodGet, "/api/transactions/pending", &manager, "list_pending"},
		{http.MethodGet, "/api/transactions/assigned", &manager, "list_assigned"},
		{http.MethodPost, "/api/transactions/42/review", &manager, "review"},

		{http.MethodGet, "/api/statistics/current", &worker, "current_statistics"},
		{http.MethodGet, "/api/statistics/history", &manager, "statistics_history"},
		{http.MethodGet, "/api/statistics/hourly", &director, "hourly_statistics"},

		{http.MethodGet, "/api/notifications", &worker, "list_notifications"},
		{http.MethodGet, "/api/notifications/unread-count", &worker, "unread_count"},
		{http.MethodPost, "/api/notifications/42/read", &worker, "mark_read"},
		{http.MethodPost, "/api/notifications/read-all", &worker, "mark_all_read"},

		{http.MethodGet, "/api/director/transactions", &director, "director_list"},
		{http.MethodGet, "/api/director/transactions/pending", &director, "director_pending"},
		{http.MethodGet, "/api/director/transactions/rejected", &director, "director_rejected"},
		{http.MethodGet, "/api/director/summary", &director, "director_summary"},
		{http.MethodGet, "/api/director/users", &director, "list_users"},
		{http.MethodGet, "/api/director/users/42", &director, "get_user"},
		{http.MethodPost, "/api/director/users", &director, "create_user"},
		{http.MethodPost, "/api/director/users/42/assign-manager", &director, "assign_manager"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp := doRequest(t, srv, tt.method, tt.path, tt.role)
			assert.Equal(t, http.StatusTeapot, resp.StatusCode)
			assert.Equal(t, tt.wantName, resp.Header.Get("X-Handler"))
		})
	}
}

func TestCustomRouter_Route_authRequired(t *testing.T) {
	srv := newTestServer(t)

	paths := []string{
		"/api/transactions/my",
		"/api/statistics/current",
		"/api/notifications",
		"/api/director/summary",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			resp := doRequest(t, srv, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestCustomRouter_Route_roleGuards(t *testing.T) {
	srv := newTestServer(t)

	worker := user.RoleWorker
	manager := user.RoleManager

	tests := []struct {
		method string
		path   string
		role   *user.Role
	}{
		{http.MethodGet, "/api/transactions/pending", &worker},
		{http.MethodPost, "/api/transactions/42/review", &worker},
		{http.MethodGet, "/api/director/transactions", &worker},
		{http.MethodGet, "/api/director/summary", &manager},
		{http.MethodGet, "/api/director/users", &manager},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp := doRequest(t, srv, tt.method, tt.path, tt.role)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}

func TestCustomRouter_Route_wrongRoutes(t *testing.T) {
	srv := newTestServer(t)

	director := user.RoleDirector

	tests := []struct {
		method   string
		path     string
		role     *user.Role
		wantCode int
	}{
		{http.MethodPost, "/", nil, http.StatusNotFound},
		{http.MethodGet, "/api", nil, http.StatusNotFound},
		{http.MethodGet, "/api/transaction", &director, http.StatusNotFound},
		{http.MethodGet, "/ping/", nil, http.StatusNotFound},

		{http.MethodGet, "/api/auth/login", nil, http.StatusMethodNotAllowed},
		{http.MethodDelete, "/api/transactions/my", &director, http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/statistics/current", &director, http.StatusMethodNotAllowed},
		{http.MethodPost, "/ping", nil, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp := doRequest(t, srv, tt.method, tt.path, tt.role)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
		})
	}
}
