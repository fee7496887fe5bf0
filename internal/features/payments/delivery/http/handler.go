package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Davlaati/humo-ai/internal/common/logger"
	"github.com/Davlaati/humo-ai/internal/features/auth"
	"github.com/Davlaati/humo-ai/internal/features/payments/models"
	"github.com/Davlaati/humo-ai/internal/features/payments/service"
)

type PaymentsHandler struct {
	payments *service.Service
}

func NewPaymentsHandler(payments *service.Service) *PaymentsHandler {
	return &PaymentsHandler{payments: payments}
}

// RegisterRoutes mounts routes that require a bearer token.
func (h *PaymentsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/payments/invoice", h.CreateInvoice)
}

// RegisterPublicRoutes mounts the provider-facing webhook.
func (h *PaymentsHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.POST("/payments/webhook", h.Webhook)
}

type createInvoiceRequest struct {
	Item string `json:"item" binding:"required"`
}

// CreateInvoice godoc
// @Summary Create a Stars invoice link for a catalog item
// @Tags payments
// @Accept json
// @Produce json
// @Param request body createInvoiceRequest true "Catalog item key"
// @Success 200 {object} service.Invoice
// @Router /payments/invoice [post]
func (h *PaymentsHandler) CreateInvoice(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item is required"})
		return
	}

	item, ok := models.ParseItem(req.Item)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown item"})
		return
	}

	invoice, err := h.payments.CreateInvoice(c.Request.Context(), userID, item)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownUser):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrProviderUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
		default:
			logger.Error().Err(err).Msg("Failed to create invoice")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, invoice)
}

type webhookRequest struct {
	UserID           int64  `json:"userId" binding:"required"`
	Amount           int    `json:"amount" binding:"required"`
	Currency         string `json:"currency"`
	ProviderChargeID string `json:"provider_charge_id"`
	Payload          string `json:"payload"`
}

// Webhook godoc
// @Summary Reconcile an out-of-band payment confirmation
// @Tags payments
// @Accept json
// @Produce json
// @Param request body webhookRequest true "Payment confirmation"
// @Success 200 {object} map[string]string
// @Router /payments/webhook [post]
func (h *PaymentsHandler) Webhook(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and amount are required"})
		return
	}

	if req.Currency == "" {
		req.Currency = models.CurrencyStars
	}

	err := h.payments.Reconcile(c.Request.Context(),
		req.UserID, req.Amount, req.Currency, req.ProviderChargeID, req.Payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownUser):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			logger.Error().Err(err).Int64("user_id", req.UserID).Msg("Webhook reconciliation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
