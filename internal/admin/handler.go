package admin

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bluecarbon/admin-console/internal/dashboard"
	"bluecarbon/admin-console/internal/gateway"
	"bluecarbon/admin-console/internal/notifications"
	"bluecarbon/admin-console/internal/session"
)

// SessionManager is the session store surface the handlers drive
type SessionManager interface {
	Login(ctx context.Context, email, password string) bool
	Logout(ctx context.Context)
	Current() session.Snapshot
}

// Gateway is the data surface the handlers read and write through
type Gateway interface {
	ListProjects(ctx context.Context) []gateway.Project
	ListVerifications(ctx context.Context) []gateway.Verification
	UpdateVerification(ctx context.Context, id string, status gateway.VerificationStatus) gateway.VerificationUpdate
}

// RemarkGenerator produces AI remarks for free-text input
type RemarkGenerator interface {
	Generate(ctx context.Context, text string) string
}

// StatsProvider serves the dashboard summary
type StatsProvider interface {
	Stats(ctx context.Context) dashboard.Stats
	Invalidate()
}

// Handler exposes the console's view-layer contract over HTTP. The four data
// operations never answer 5xx: the gateway resolves their failures to
// fallback values before they reach here.
type Handler struct {
	sessions SessionManager
	gateway  Gateway
	remarks  RemarkGenerator
	stats    StatsProvider
	hub      *notifications.Hub
	notifier notifications.Notifier
	logger   *zap.Logger
}

// NewHandler creates the admin HTTP handler
func NewHandler(
	sessions SessionManager,
	gw Gateway,
	remarks RemarkGenerator,
	stats StatsProvider,
	hub *notifications.Hub,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		sessions: sessions,
		gateway:  gw,
		remarks:  remarks,
		stats:    stats,
		hub:      hub,
		notifier: hub,
		logger:   logger,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges credentials for a session
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	if !h.sessions.Login(c.Request.Context(), req.Email, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials or server error"})
		return
	}

	snapshot := h.sessions.Current()
	c.JSON(http.StatusOK, gin.H{
		"token": snapshot.Token,
		"user":  snapshot.User,
	})
}

// Logout tears down the current session
func (h *Handler) Logout(c *gin.Context) {
	h.sessions.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the current session snapshot
func (h *Handler) Me(c *gin.Context) {
	snapshot := h.sessions.Current()
	c.JSON(http.StatusOK, gin.H{
		"user":      snapshot.User,
		"token":     snapshot.Token,
		"isLoading": snapshot.IsLoading(),
	})
}

// ListProjects returns the project listing (fallback data when degraded)
func (h *Handler) ListProjects(c *gin.Context) {
	c.JSON(http.StatusOK, h.gateway.ListProjects(c.Request.Context()))
}

// ListVerifications returns the verification request listing
func (h *Handler) ListVerifications(c *gin.Context) {
	c.JSON(http.StatusOK, h.gateway.ListVerifications(c.Request.Context()))
}

type updateVerificationRequest struct {
	Status gateway.VerificationStatus `json:"status" binding:"required"`
}

// UpdateVerification approves or rejects a verification request. Approved and
// rejected are terminal; no other transition exists at this layer.
func (h *Handler) UpdateVerification(c *gin.Context) {
	id := c.Param("id")

	var req updateVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	if req.Status != gateway.VerificationStatusApproved && req.Status != gateway.VerificationStatusRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be approved or rejected"})
		return
	}

	update := h.gateway.UpdateVerification(c.Request.Context(), id, req.Status)
	h.stats.Invalidate()
	h.notifier.Toast(notifications.LevelSuccess,
		"Verification "+string(req.Status),
		"The verification request has been "+string(req.Status)+" successfully.")

	c.JSON(http.StatusOK, update)
}

type remarkRequest struct {
	Text string `json:"text"`
}

// GenerateRemark runs AI analysis on free-text input. Empty or whitespace
// input is rejected here; the generator itself does not special-case it.
func (h *Handler) GenerateRemark(c *gin.Context) {
	var req remarkRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter some text to analyze."})
		return
	}

	remark := h.remarks.Generate(c.Request.Context(), req.Text)
	h.notifier.Toast(notifications.LevelSuccess,
		"AI Analysis Generated",
		"Your AI-powered remark has been generated successfully.")

	c.JSON(http.StatusOK, gin.H{"remark": remark})
}

// DashboardStats returns the aggregate overview numbers
func (h *Handler) DashboardStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.stats.Stats(c.Request.Context()))
}

// Subscribe upgrades the request to a WebSocket toast subscription
func (h *Handler) Subscribe(c *gin.Context) {
	if err := h.hub.HandleConnection(c.Writer, c.Request); err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
	}
}
