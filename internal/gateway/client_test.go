package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testDemoLogin() DemoLogin {
	return DemoLogin{
		Enabled:     true,
		Email:       "test123@gmail.com",
		Password:    "test123#",
		TokenSecret: "test-secret",
	}
}

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, 2*time.Second, testDemoLogin(), zap.NewNop())
}

// unreachableClient points at a server that has already been shut down.
func unreachableClient(t *testing.T) *Client {
	t.Helper()
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	return newTestClient(server.URL)
}

func TestAuthenticateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/login", r.URL.Path)
		w.Write([]byte(`{"token":"server-token","user":{"id":"42","email":"admin@bluecarbon.org","name":"Admin"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Authenticate(context.Background(), "admin@bluecarbon.org", "pw")

	require.NoError(t, err)
	assert.Equal(t, "server-token", result.Token)
	require.NotNil(t, result.User)
	assert.Equal(t, "42", result.User.ID)
}

func TestAuthenticateDemoCredentialsWhenUnreachable(t *testing.T) {
	client := unreachableClient(t)

	result, err := client.Authenticate(context.Background(), "test123@gmail.com", "test123#")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Token, DemoTokenPrefix))
	require.NotNil(t, result.User)
	assert.Equal(t, "1", result.User.ID)
	assert.Equal(t, "test123@gmail.com", result.User.Email)
	assert.Equal(t, "Test Admin", result.User.Name)
}

func TestAuthenticateRejectsOtherCredentialsWhenUnreachable(t *testing.T) {
	client := unreachableClient(t)

	_, err := client.Authenticate(context.Background(), "someone@example.com", "hunter2")

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "someone@example.com", authErr.Email)
}

func TestAuthenticateDemoDisabled(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	demo := testDemoLogin()
	demo.Enabled = false
	client := NewClient(server.URL, time.Second, demo, zap.NewNop())

	_, err := client.Authenticate(context.Background(), "test123@gmail.com", "test123#")

	var authErr *AuthenticationError
	assert.ErrorAs(t, err, &authErr)
}

func TestAuthenticateMissingTokenFallsToDemo(t *testing.T) {
	// A 200 with no token is an invalid shape, treated like any other failure.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"id":"9","email":"x@y.z"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Authenticate(context.Background(), "test123@gmail.com", "test123#")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Token, DemoTokenPrefix))
}

func TestListProjectsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects", r.URL.Path)
		assert.Equal(t, "Bearer live-token", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"id":"p9","title":"Kelp Forest Recovery","status":"pending","verifier":"Dr. Reyes","location":"Monterey Bay","co2Sequestered":410}]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.SetToken("live-token")

	projects := client.ListProjects(context.Background())

	require.Len(t, projects, 1)
	assert.Equal(t, "p9", projects[0].ID)
	assert.Equal(t, ProjectStatusPending, projects[0].Status)
	assert.Equal(t, 410.0, projects[0].CO2Sequestered)
}

func TestListProjectsFallbackWhenUnreachable(t *testing.T) {
	client := unreachableClient(t)

	projects := client.ListProjects(context.Background())

	require.Len(t, projects, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{projects[0].ID, projects[1].ID, projects[2].ID})
	assert.Equal(t, ProjectStatusApproved, projects[0].Status)
	assert.Equal(t, ProjectStatusPending, projects[1].Status)
	assert.Equal(t, ProjectStatusRejected, projects[2].Status)

	var total float64
	for _, p := range projects {
		total += p.CO2Sequestered
	}
	assert.Equal(t, 2700.0, total)
}

func TestListProjectsFallbackOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	projects := newTestClient(server.URL).ListProjects(context.Background())
	assert.Len(t, projects, 3)
}

func TestListProjectsFallbackOnInvalidShape(t *testing.T) {
	cases := map[string]string{
		"not json":      `{"oops"`,
		"empty id":      `[{"id":"","title":"X","status":"pending"}]`,
		"duplicate ids": `[{"id":"1","title":"A","status":"pending"},{"id":"1","title":"B","status":"approved"}]`,
		"bad status":    `[{"id":"1","title":"A","status":"archived"}]`,
		"negative co2":  `[{"id":"1","title":"A","status":"pending","co2Sequestered":-5}]`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			projects := newTestClient(server.URL).ListProjects(context.Background())
			require.Len(t, projects, 3)
			assert.Equal(t, "Mangrove Restoration Project", projects[0].Title)
		})
	}
}

func TestListVerificationsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/verifications", r.URL.Path)
		w.Write([]byte(`[{"id":"v1","verifierName":"Dr. Osei","type":"Technical","status":"pending","projectTitle":"Kelp Forest Recovery","submittedAt":"2024-02-01T08:00:00Z"}]`))
	}))
	defer server.Close()

	verifications := newTestClient(server.URL).ListVerifications(context.Background())

	require.Len(t, verifications, 1)
	assert.Equal(t, "Dr. Osei", verifications[0].VerifierName)
	assert.Equal(t, VerificationTypeTechnical, verifications[0].Type)
}

func TestListVerificationsFallbackWhenUnreachable(t *testing.T) {
	client := unreachableClient(t)

	verifications := client.ListVerifications(context.Background())

	require.Len(t, verifications, 3)
	assert.Equal(t, "Dr. Sarah Chen", verifications[0].VerifierName)
	assert.Equal(t, VerificationStatusPending, verifications[0].Status)
	assert.Equal(t, VerificationTypeCommunity, verifications[1].Type)
	assert.Equal(t, VerificationStatusRejected, verifications[2].Status)
}

func TestUpdateVerificationSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/verifications/7", r.URL.Path)
		w.Write([]byte(`{"id":"7","status":"approved","updatedAt":"2024-02-02T12:00:00Z"}`))
	}))
	defer server.Close()

	update := newTestClient(server.URL).UpdateVerification(context.Background(), "7", VerificationStatusApproved)

	assert.Equal(t, "7", update.ID)
	assert.Equal(t, VerificationStatusApproved, update.Status)
	assert.Equal(t, 2024, update.UpdatedAt.Year())
}

func TestUpdateVerificationSynthesizedWhenUnreachable(t *testing.T) {
	client := unreachableClient(t)
	before := time.Now().UTC()

	update := client.UpdateVerification(context.Background(), "1", VerificationStatusApproved)

	assert.Equal(t, "1", update.ID)
	assert.Equal(t, VerificationStatusApproved, update.Status)
	assert.False(t, update.UpdatedAt.Before(before))
}

func TestTokenNotAttachedAfterClear(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.SetToken("short-lived")
	client.ClearToken()

	client.ListProjects(context.Background())
	assert.Empty(t, gotAuth)
}
