package paymentControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopverse/storefront-api/apperr"
	"github.com/shopverse/storefront-api/controllers/httpx"
	"github.com/shopverse/storefront-api/middleware"
	"github.com/shopverse/storefront-api/services/payment"
)

const signatureHeader = "Stripe-Signature"

type CreateIntentInput struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// POST /api/payments/create-intent
func CreateIntent(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := middleware.UserID(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var input CreateIntentInput
		if err := c.ShouldBindJSON(&input); err != nil {
			httpx.Error(c, apperr.New(apperr.CodeInvalidInput, "invalid input: "+err.Error()))
			return
		}
		intent, err := svc.IssueIntent(c.Request.Context(), input.OrderID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"client_secret": intent.ClientSecret, "intent_id": intent.ID})
	}
}

// POST /api/payments/webhook
//
// The provider signs the raw body; it must be read before any JSON binding
// touches it.
func Webhook(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := c.GetRawData()
		if err != nil {
			httpx.Error(c, apperr.New(apperr.CodeInvalidInput, "failed to read payload"))
			return
		}
		if err := svc.ReconcileEvent(c.Request.Context(), payload, c.GetHeader(signatureHeader)); err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
