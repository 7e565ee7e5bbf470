package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bluecarbon/admin-console/internal/dashboard"
	"bluecarbon/admin-console/internal/gateway"
	"bluecarbon/admin-console/internal/notifications"
	"bluecarbon/admin-console/internal/remarks"
	"bluecarbon/admin-console/internal/session"
	"bluecarbon/admin-console/internal/storage"
)

// newTestRouter wires real components against an unreachable backend, so the
// HTTP surface exercises the degraded-mode contract end to end.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()

	gw := gateway.NewClient(dead.URL, time.Second, gateway.DemoLogin{
		Enabled:     true,
		Email:       "test123@gmail.com",
		Password:    "test123#",
		TokenSecret: "test-secret",
	}, logger)

	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	hub := notifications.NewHub(logger)
	t.Cleanup(hub.Close)

	sessions := session.NewManager(gw, store, hub, logger)
	generator := remarks.NewGenerator(dead.URL, "gemini-pro", "test-key", time.Second, logger)
	stats := dashboard.NewAggregator(gw, time.Minute, logger)

	handler := NewHandler(sessions, gw, generator, stats, hub, logger)
	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), handler)
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLoginWithDemoCredentials(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/admin/login",
		`{"email":"test123@gmail.com","password":"test123#"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string       `json:"token"`
		User  gateway.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Token, gateway.DemoTokenPrefix))
	assert.Equal(t, "Test Admin", resp.User.Name)
}

func TestLoginWithUnknownCredentials(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/admin/login",
		`{"email":"someone@example.com","password":"nope"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The failed login did not establish a session.
	me := doRequest(router, http.MethodGet, "/api/v1/admin/me", "")
	var snapshot struct {
		User  *gateway.User `json:"user"`
		Token string        `json:"token"`
	}
	require.NoError(t, json.Unmarshal(me.Body.Bytes(), &snapshot))
	assert.Nil(t, snapshot.User)
	assert.Empty(t, snapshot.Token)
}

func TestLoginWithMissingFields(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/admin/login", `{"email":"a@b.c"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutIsRepeatable(t *testing.T) {
	router := newTestRouter(t)

	for range 2 {
		w := doRequest(router, http.MethodPost, "/api/v1/admin/logout", "")
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestListProjectsServesFallback(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/projects", "")
	require.Equal(t, http.StatusOK, w.Code)

	var projects []gateway.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &projects))
	require.Len(t, projects, 3)
	assert.Equal(t, "1", projects[0].ID)
}

func TestListVerificationsServesFallback(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/verifications", "")
	require.Equal(t, http.StatusOK, w.Code)

	var verifications []gateway.Verification
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verifications))
	require.Len(t, verifications, 3)
	assert.Equal(t, gateway.VerificationTypeTechnical, verifications[0].Type)
}

func TestUpdateVerification(t *testing.T) {
	router := newTestRouter(t)
	before := time.Now().UTC()

	w := doRequest(router, http.MethodPatch, "/api/v1/verifications/1", `{"status":"approved"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var update gateway.VerificationUpdate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &update))
	assert.Equal(t, "1", update.ID)
	assert.Equal(t, gateway.VerificationStatusApproved, update.Status)
	assert.False(t, update.UpdatedAt.Before(before))
}

func TestUpdateVerificationRejectsOtherStatuses(t *testing.T) {
	router := newTestRouter(t)

	for _, status := range []string{"pending", "archived", ""} {
		w := doRequest(router, http.MethodPatch, "/api/v1/verifications/1",
			`{"status":"`+status+`"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code, "status %q", status)
	}
}

func TestGenerateRemarkRejectsEmptyInput(t *testing.T) {
	router := newTestRouter(t)

	for _, body := range []string{`{"text":""}`, `{"text":"   "}`, `{}`} {
		w := doRequest(router, http.MethodPost, "/api/v1/remarks", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}
}

func TestGenerateRemarkServesFallback(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/remarks", `{"text":"mangrove field notes"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Remark string `json:"remark"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Remark, `"mangrove field notes"`)
}

func TestDashboardStatsFromFallbackData(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/dashboard/stats", "")
	require.Equal(t, http.StatusOK, w.Code)

	var stats dashboard.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.TotalProjects)
	assert.Equal(t, 1, stats.ApprovedProjects)
	assert.Equal(t, 1, stats.PendingVerifications)
	assert.Equal(t, 2700.0, stats.TotalCO2)
}
