package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DemoLogin configures the demo-credential escape hatch. It exists so the
// console works without a reachable backend in staging/demo builds; it is not
// a security mechanism and should be disabled elsewhere.
type DemoLogin struct {
	Enabled     bool
	Email       string
	Password    string
	TokenSecret string
}

// Client is the single point of outbound communication with the MRV backend.
//
// Every read/write data operation degrades to a fixed fallback dataset on any
// failure (network error, timeout, non-2xx, invalid shape) instead of
// surfacing an error: the dashboard always renders something. Authenticate is
// the one operation that fails closed. There are no retries by design; a
// failed attempt falls straight to the fallback.
type Client struct {
	baseURL    string
	httpClient *http.Client
	demo       DemoLogin
	logger     *zap.Logger

	mu    sync.RWMutex
	token string
}

const defaultTimeout = 10 * time.Second

// NewClient creates a gateway client for the backend at baseURL.
func NewClient(baseURL string, timeout time.Duration, demo DemoLogin, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		demo:       demo,
		logger:     logger,
	}
}

// SetToken stores the bearer token attached to subsequent requests. The token
// is read per-request, so clearing it mid-flight cannot leak into a later call.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken removes the stored bearer token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Authenticate exchanges credentials for a token and user record.
//
// On any failure the demo credential pair, if enabled and matched, synthesizes
// a local result; all other failures surface as *AuthenticationError.
func (c *Client) Authenticate(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}

	var result LoginResult
	err := c.do(ctx, http.MethodPost, "/admin/login", body, &result)
	if err == nil && result.Token == "" {
		err = fmt.Errorf("%w: login response missing token", ErrInvalidResponse)
	}
	if err != nil {
		if c.demo.Enabled && email == c.demo.Email && password == c.demo.Password {
			c.logger.Info("backend login unavailable, using demo credentials", zap.Error(err))
			return demoLoginResult(c.demo), nil
		}
		return nil, &AuthenticationError{Email: email, Err: err}
	}
	return &result, nil
}

// ListProjects returns the backend's project list, or the fixed demo list on
// any failure. It never returns an error.
func (c *Client) ListProjects(ctx context.Context) []Project {
	var projects []Project
	err := c.do(ctx, http.MethodGet, "/projects", nil, &projects)
	if err == nil {
		err = validateProjects(projects)
	}
	if err != nil {
		c.logger.Warn("backend unavailable, serving fallback projects", zap.Error(err))
		return fallbackProjects()
	}
	return projects
}

// ListVerifications returns the backend's verification requests, or the fixed
// demo list on any failure. It never returns an error.
func (c *Client) ListVerifications(ctx context.Context) []Verification {
	var verifications []Verification
	err := c.do(ctx, http.MethodGet, "/verifications", nil, &verifications)
	if err == nil {
		err = validateVerifications(verifications)
	}
	if err != nil {
		c.logger.Warn("backend unavailable, serving fallback verifications", zap.Error(err))
		return fallbackVerifications()
	}
	return verifications
}

// UpdateVerification marks a verification request approved or rejected. On
// any failure the acknowledgement is synthesized locally; last response wins
// on the caller's state.
func (c *Client) UpdateVerification(ctx context.Context, id string, status VerificationStatus) VerificationUpdate {
	body := map[string]VerificationStatus{"status": status}

	var update VerificationUpdate
	err := c.do(ctx, http.MethodPatch, "/verifications/"+id, body, &update)
	if err == nil && update.ID == "" {
		err = fmt.Errorf("%w: acknowledgement missing id", ErrInvalidResponse)
	}
	if err != nil {
		c.logger.Warn("backend unavailable, synthesizing verification update",
			zap.String("id", id), zap.Error(err))
		return VerificationUpdate{ID: id, Status: status, UpdatedAt: time.Now().UTC()}
	}
	return update
}

// do issues one request and decodes the response. All transport, status, and
// decode failures come back as a plain error; callers decide whether to mask.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("backend returned %s for %s %s", resp.Status, method, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// validateProjects checks the decoded list at the gateway boundary. A shape
// violation is treated identically to a network failure.
func validateProjects(projects []Project) error {
	seen := make(map[string]bool, len(projects))
	for _, p := range projects {
		if p.ID == "" {
			return fmt.Errorf("%w: project with empty id", ErrInvalidResponse)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate project id %s", ErrInvalidResponse, p.ID)
		}
		seen[p.ID] = true

		switch p.Status {
		case ProjectStatusApproved, ProjectStatusPending, ProjectStatusRejected:
		default:
			return fmt.Errorf("%w: unknown project status %q", ErrInvalidResponse, p.Status)
		}
		if p.CO2Sequestered < 0 {
			return fmt.Errorf("%w: negative CO2 for project %s", ErrInvalidResponse, p.ID)
		}
	}
	return nil
}

func validateVerifications(verifications []Verification) error {
	seen := make(map[string]bool, len(verifications))
	for _, v := range verifications {
		if v.ID == "" {
			return fmt.Errorf("%w: verification with empty id", ErrInvalidResponse)
		}
		if seen[v.ID] {
			return fmt.Errorf("%w: duplicate verification id %s", ErrInvalidResponse, v.ID)
		}
		seen[v.ID] = true

		switch v.Status {
		case VerificationStatusPending, VerificationStatusApproved, VerificationStatusRejected:
		default:
			return fmt.Errorf("%w: unknown verification status %q", ErrInvalidResponse, v.Status)
		}
	}
	return nil
}
