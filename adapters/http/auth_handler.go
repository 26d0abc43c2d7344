package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	identityUC "github.com/reclaimhq/reclaim/internal/application/usecase/identity"
	"github.com/reclaimhq/reclaim/pkg/logger"
)

type AuthHandler struct {
	manager *identityUC.Manager
	logger  logger.Logger
}

func NewAuthHandler(mgr *identityUC.Manager, log logger.Logger) *AuthHandler {
	return &AuthHandler{manager: mgr, logger: log}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login begins a password session. The response does not carry a profile:
// resolution is asynchronous and the UI polls /auth/state.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if err := h.manager.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "session starting"})
}

type oauthRequest struct {
	Provider string `json:"provider" binding:"required,oneof=google apple"`
	IDToken  string `json:"id_token" binding:"required"`
}

func (h *AuthHandler) OAuthLogin(c *gin.Context) {
	var req oauthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if err := h.manager.OAuthLogin(c.Request.Context(), req.Provider, req.IDToken); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "session starting"})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if err := h.manager.Register(c.Request.Context(), req.Email, req.Password); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "session starting"})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.manager.Logout(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "session ending"})
}

type resetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if err := h.manager.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "reset requested"})
}

// State reports the lifecycle state, the resolved profile if any, and the
// derived completeness predicate.
func (h *AuthHandler) State(c *gin.Context) {
	resp := gin.H{
		"state":            h.manager.State().String(),
		"profile_complete": h.manager.ProfileComplete(),
	}
	if p := h.manager.Profile(); p != nil {
		resp["profile"] = ToProfileDTO(p)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	if err := h.manager.DeleteAccount(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "account deletion requested"})
}
