package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/todofy/todofy/internal/config"
	"github.com/todofy/todofy/internal/sessions"
	"github.com/todofy/todofy/internal/tokens"
	"github.com/todofy/todofy/internal/users"
	"github.com/todofy/todofy/pkg/logger"
	"github.com/todofy/todofy/pkg/metrics"
	"github.com/todofy/todofy/pkg/middleware"
)

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest exchanges credentials for tokens.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthHandler holds dependencies for the account/session endpoints
type AuthHandler struct {
	cfg         *config.Config
	usersSvc    *users.Service
	sessionsSvc *sessions.Service
}

func NewAuthHandler(cfg *config.Config, u *users.Service, s *sessions.Service) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u, sessionsSvc: s}
}

// Register mounts routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.POST("/register", h.RegisterAccount)
	a.POST("/login", h.Login)
	a.POST("/refresh", h.Refresh)
	a.POST("/logout", h.Logout)
}

// RegisterAccount creates an account from email, name and password
func (h *AuthHandler) RegisterAccount(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	u, err := h.usersSvc.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		if err == users.ErrEmailTaken {
			metrics.AuthAttempts.WithLabelValues("register", metrics.OutcomeError).Inc()
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "email already registered"})
			return
		}
		logger.Errorf("register failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "registration failed"})
		return
	}
	metrics.AuthAttempts.WithLabelValues("register", metrics.OutcomeOK).Inc()
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": u})
}

// Login verifies credentials and returns an access token plus refresh session
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	u, err := h.usersSvc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logger.Errorf("login lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "authentication failed"})
		return
	}
	if u == nil {
		metrics.AuthAttempts.WithLabelValues("login", metrics.OutcomeError).Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid email or password"})
		return
	}
	refresh, err := h.sessionsSvc.CreateSession(c.Request.Context(), u.ID.Hex(), h.cfg.Auth.RefreshTokenTTL)
	if err != nil {
		logger.Errorf("failed to create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to create session"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, u, h.cfg.Auth.AccessTokenTTL)
	if err != nil {
		logger.Errorf("failed to sign access token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to create access token"})
		return
	}
	metrics.AuthAttempts.WithLabelValues("login", metrics.OutcomeOK).Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"accessToken":  access,
		"refreshToken": refresh,
		"user":         u,
		"expiresIn":    int(h.cfg.Auth.AccessTokenTTL.Seconds()),
	}})
}

// Refresh exchanges a valid refresh session token for a new access token
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	sess, err := h.sessionsSvc.ValidateToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		logger.Errorf("refresh validation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "validation failed"})
		return
	}
	if sess == nil {
		metrics.AuthAttempts.WithLabelValues("refresh", metrics.OutcomeError).Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid refresh token"})
		return
	}
	u, err := h.usersSvc.GetByID(c.Request.Context(), sess.UserID)
	if err != nil || u == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "user lookup failed"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, u, h.cfg.Auth.AccessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to create access token"})
		return
	}
	metrics.AuthAttempts.WithLabelValues("refresh", metrics.OutcomeOK).Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"accessToken": access,
		"expiresIn":   int(h.cfg.Auth.AccessTokenTTL.Seconds()),
	}})
}

// Logout deletes the refresh session and blacklists the presented access token
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken != "" {
		if err := h.sessionsSvc.DeleteToken(c.Request.Context(), req.RefreshToken); err != nil {
			logger.Warnf("failed to delete refresh session: %v", err)
		}
	}
	// revoke the access token for its remaining lifetime
	if auth := c.GetHeader("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok && token != "" {
			if err := sessions.BlacklistAccessToken(c.Request.Context(), token, h.cfg.Auth.AccessTokenTTL); err != nil {
				logger.Warnf("failed to blacklist access token: %v", err)
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out"})
}

// Me returns the authenticated account. Mounted behind the auth middleware.
func (h *AuthHandler) Me(c *gin.Context) {
	principal := middleware.PrincipalID(c)
	if principal == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}
	u, err := h.usersSvc.GetByID(c.Request.Context(), principal)
	if err != nil {
		logger.Errorf("me lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "user lookup failed"})
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": u})
}
