package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Davlaati/humo-ai/internal/common/logger"
	"github.com/Davlaati/humo-ai/internal/features/auth"
	"github.com/Davlaati/humo-ai/internal/features/dictionary/service"
)

type DictionaryHandler struct {
	dictionary service.DictionaryService
}

func NewDictionaryHandler(dictionary service.DictionaryService) *DictionaryHandler {
	return &DictionaryHandler{dictionary: dictionary}
}

func (h *DictionaryHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/dictionary/lookup", h.Lookup)
}

type lookupRequest struct {
	Word string `json:"word" binding:"required"`
}

// Lookup godoc
// @Summary Look up a word with a level- and interest-aware explanation
// @Tags dictionary
// @Accept json
// @Produce json
// @Param request body lookupRequest true "Word to look up"
// @Success 200 {object} models.Entry
// @Router /dictionary/lookup [post]
func (h *DictionaryHandler) Lookup(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req lookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "word is required"})
		return
	}

	entry, err := h.dictionary.Lookup(c.Request.Context(), userID, req.Word)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownUser):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrProviderUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "language model unavailable"})
		case errors.Is(err, service.ErrMalformedResponse):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "language model returned an unusable answer"})
		default:
			logger.Error().Err(err).Msg("Dictionary lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, entry)
}
