package session

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"bluecarbon/admin-console/internal/gateway"
	"bluecarbon/admin-console/internal/notifications"
)

// Gateway is the slice of the API gateway the session store drives.
type Gateway interface {
	Authenticate(ctx context.Context, email, password string) (*gateway.LoginResult, error)
	SetToken(token string)
	ClearToken()
}

// SlotStorage is the durable key-value store holding the token and user slots.
type SlotStorage interface {
	Get(ctx context.Context, name string) (string, error)
	Put(ctx context.Context, name, value string) error
	Delete(ctx context.Context, name string) error
}

// Manager owns the single active admin session and its durable persistence.
//
// All failures are absorbed at this boundary: Login reports a boolean plus a
// toast, Restore and Logout never surface errors at all. Concurrent duplicate
// Login calls are not de-duplicated; the mutex only keeps state consistent.
type Manager struct {
	gateway  Gateway
	storage  SlotStorage
	notifier notifications.Notifier
	logger   *zap.Logger

	mu    sync.RWMutex
	state State
	user  *gateway.User
	token string
}

// NewManager creates a session manager in the Unauthenticated state.
func NewManager(gw Gateway, storage SlotStorage, notifier notifications.Notifier, logger *zap.Logger) *Manager {
	return &Manager{
		gateway:  gw,
		storage:  storage,
		notifier: notifier,
		logger:   logger,
		state:    StateUnauthenticated,
	}
}

// Restore re-establishes a prior session from durable storage at startup.
// Both slots must be present and the user record must parse; anything less is
// treated as "no prior session" and fails silently.
func (m *Manager) Restore(ctx context.Context) {
	token, err := m.storage.Get(ctx, slotToken)
	if err != nil {
		m.logger.Debug("no stored token, starting unauthenticated", zap.Error(err))
		return
	}

	rawUser, err := m.storage.Get(ctx, slotUser)
	if err != nil {
		m.logger.Debug("no stored user record, starting unauthenticated", zap.Error(err))
		return
	}

	var user gateway.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil || user.ID == "" || user.Email == "" {
		m.logger.Debug("stored user record invalid, starting unauthenticated", zap.Error(err))
		return
	}

	m.mu.Lock()
	m.user = &user
	m.token = token
	m.state = StateAuthenticated
	m.mu.Unlock()

	m.gateway.SetToken(token)
	m.logger.Info("session restored", zap.String("email", user.Email))
}

// Login exchanges credentials for a session. On success the session is
// persisted and true is returned; on failure state is untouched, a toast
// reports the problem, and false is returned.
func (m *Manager) Login(ctx context.Context, email, password string) bool {
	m.mu.Lock()
	m.state = StateAuthenticating
	m.mu.Unlock()

	result, err := m.gateway.Authenticate(ctx, email, password)
	if err != nil {
		m.logger.Warn("login failed", zap.String("email", email), zap.Error(err))
		m.notifier.Toast(notifications.LevelError, "Login failed", "Invalid credentials or server error")

		m.mu.Lock()
		if m.user != nil {
			m.state = StateAuthenticated
		} else {
			m.state = StateUnauthenticated
		}
		m.mu.Unlock()
		return false
	}

	user := result.User
	if user == nil {
		// Backend omitted the user record; construct a minimal one.
		user = &gateway.User{ID: "1", Email: email}
	}

	if data, err := json.Marshal(user); err == nil {
		if err := m.storage.Put(ctx, slotToken, result.Token); err != nil {
			m.logger.Warn("failed to persist token slot", zap.Error(err))
		}
		if err := m.storage.Put(ctx, slotUser, string(data)); err != nil {
			m.logger.Warn("failed to persist user slot", zap.Error(err))
		}
	}

	m.mu.Lock()
	m.user = user
	m.token = result.Token
	m.state = StateAuthenticated
	m.mu.Unlock()

	m.gateway.SetToken(result.Token)
	m.notifier.Toast(notifications.LevelSuccess, "Login successful", "Welcome to BlueCarbon Admin Panel")
	m.logger.Info("login succeeded", zap.String("email", user.Email))
	return true
}

// Logout tears the session down. Safe to call with no active session.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.state = StateUnauthenticated
	m.mu.Unlock()

	if err := m.storage.Delete(ctx, slotToken); err != nil {
		m.logger.Warn("failed to delete token slot", zap.Error(err))
	}
	if err := m.storage.Delete(ctx, slotUser); err != nil {
		m.logger.Warn("failed to delete user slot", zap.Error(err))
	}

	m.gateway.ClearToken()
	m.notifier.Toast(notifications.LevelSuccess, "Logged out", "You have been logged out successfully")
}

// Current returns a snapshot of the session for the view layer.
func (m *Manager) Current() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var user *gateway.User
	if m.user != nil {
		u := *m.user
		user = &u
	}
	return Snapshot{User: user, Token: m.token, State: m.state}
}
