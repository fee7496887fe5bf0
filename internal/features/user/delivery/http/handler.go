package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Davlaati/humo-ai/internal/features/auth"
	"github.com/Davlaati/humo-ai/internal/features/user/models"
	"github.com/Davlaati/humo-ai/internal/features/user/service"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRoutes wires the authenticated profile endpoints.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/profile", h.getProfile)
	router.POST("/progress", h.updateProgress)
}

// RegisterPublicRoutes wires endpoints that need no session.
func (h *UserHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.GET("/leaderboard", h.leaderboard)
}

// @Summary Get current profile
// @Description Returns the profile after applying the daily streak and reward rules.
// @Tags users
// @Produce json
// @Router /profile [get]
func (h *UserHandler) getProfile(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	profile, err := h.service.Profile(c.Request.Context(), userID)
	if err != nil {
		if err == service.ErrUserNotFound {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, profile)
}

type updateProgressRequest struct {
	LessonID    string `json:"lesson_id" binding:"required"`
	EarnedXP    int    `json:"earned_xp"`
	EarnedCoins int    `json:"earned_coins"`
}

// @Summary Record lesson progress
// @Description Adds earned XP and coins and recomputes the level tier.
// @Tags users
// @Accept json
// @Produce json
// @Router /progress [post]
func (h *UserHandler) updateProgress(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req updateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.service.UpdateProgress(c.Request.Context(), userID, req.EarnedXP, req.EarnedCoins)
	if err != nil {
		if err == service.ErrUserNotFound {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Progress updated",
		"xp":      user.XP,
		"coins":   user.Coins,
		"level":   user.Level,
	})
}

// @Summary Leaderboard
// @Description Top users by XP for the requested period.
// @Tags users
// @Produce json
// @Router /leaderboard [get]
func (h *UserHandler) leaderboard(c *gin.Context) {
	period := service.Period(c.DefaultQuery("period", string(service.PeriodOverall)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.service.Leaderboard(c.Request.Context(), period, limit)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if entries == nil {
		entries = []*models.LeaderboardEntry{}
	}
	c.JSON(http.StatusOK, entries)
}
