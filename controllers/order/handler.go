package orderControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shopverse/storefront-api/apperr"
	"github.com/shopverse/storefront-api/controllers/httpx"
	"github.com/shopverse/storefront-api/middleware"
	"github.com/shopverse/storefront-api/models"
	"github.com/shopverse/storefront-api/services/checkout"
	"github.com/shopverse/storefront-api/services/payment"
)

type CreateOrderInput struct {
	ShippingAddress string `json:"shipping_address" binding:"required"`
	Notes           string `json:"notes"`
}

type UpdateStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// POST /api/orders
func CreateOrder(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var input CreateOrderInput
		if err := c.ShouldBindJSON(&input); err != nil {
			httpx.Error(c, apperr.New(apperr.CodeInvalidInput, "invalid input: "+err.Error()))
			return
		}
		order, err := svc.CreateOrder(c.Request.Context(), userID, input.ShippingAddress, input.Notes)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

// GET /api/orders
func ListOrders(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		orders, err := svc.ListOrders(c.Request.Context(), userID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /api/orders/:orderID
func GetOrder(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		orderID, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
		if err != nil {
			httpx.Error(c, apperr.New(apperr.CodeInvalidInput, "invalid order id"))
			return
		}
		order, err := svc.GetOrder(c.Request.Context(), userID, uint(orderID))
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// PUT /api/admin/orders/:orderID/status
func UpdateOrderStatus(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
		if err != nil {
			httpx.Error(c, apperr.New(apperr.CodeInvalidInput, "invalid order id"))
			return
		}
		var input UpdateStatusInput
		if err := c.ShouldBindJSON(&input); err != nil {
			httpx.Error(c, apperr.New(apperr.CodeInvalidInput, "invalid input: "+err.Error()))
			return
		}
		status, err := models.ParseOrderStatus(input.Status)
		if err != nil {
			httpx.Error(c, apperr.New(apperr.CodeInvalidInput, err.Error()))
			return
		}
		order, err := svc.UpdateOrderStatus(c.Request.Context(), uint(orderID), status)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
