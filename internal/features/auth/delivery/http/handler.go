package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Davlaati/humo-ai/internal/features/auth"
)

type AuthHandler struct {
	service *auth.Service
}

func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/auth", h.authenticate)
}

type authRequest struct {
	InitData string `json:"init_data" binding:"required"`
}

type authResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// @Summary Authenticate via Telegram launch data
// @Description Verifies the signed WebApp launch payload and returns a bearer token.
// @Tags auth
// @Accept json
// @Produce json
// @Router /auth [post]
func (h *AuthHandler) authenticate(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "init_data is required"})
		return
	}

	token, err := h.service.Authenticate(c.Request.Context(), req.InitData)
	if err != nil {
		if isAuthFailure(err) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
		return
	}

	c.JSON(http.StatusOK, authResponse{AccessToken: token, TokenType: "bearer"})
}

func isAuthFailure(err error) bool {
	return errors.Is(err, auth.ErrMissingSignature) ||
		errors.Is(err, auth.ErrInvalidSignature) ||
		errors.Is(err, auth.ErrStalePayload) ||
		errors.Is(err, auth.ErrMissingIdentity)
}
