package cartControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shopverse/storefront-api/apperr"
	"github.com/shopverse/storefront-api/controllers/httpx"
	"github.com/shopverse/storefront-api/middleware"
	cartService "github.com/shopverse/storefront-api/services/cart"
)

type AddItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type UpdateItemInput struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GET /api/cart
func GetCart(svc *cartService.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		cart, err := svc.GetOrCreate(c.Request.Context(), userID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// POST /api/cart/items
func AddItem(svc *cartService.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			httpx.Error(c, apperr.New(apperr.CodeInvalidInput, "invalid input: "+err.Error()))
			return
		}
		cart, err := svc.AddLine(c.Request.Context(), userID, input.ProductID, input.Quantity)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// PUT /api/cart/items/:itemID
func UpdateItem(svc *cartService.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		itemID, err := strconv.ParseUint(c.Param("itemID"), 10, 64)
		if err != nil {
			httpx.Error(c, apperr.New(apperr.CodeInvalidInput, "invalid item id"))
			return
		}
		var input UpdateItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			httpx.Error(c, apperr.New(apperr.CodeInvalidInput, "invalid input: "+err.Error()))
			return
		}
		cart, err := svc.SetLineQuantity(c.Request.Context(), userID, uint(itemID), input.Quantity)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// DELETE /api/cart/items/:itemID
func RemoveItem(svc *cartService.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		itemID, err := strconv.ParseUint(c.Param("itemID"), 10, 64)
		if err != nil {
			httpx.Error(c, apperr.New(apperr.CodeInvalidInput, "invalid item id"))
			return
		}
		cart, err := svc.RemoveLine(c.Request.Context(), userID, uint(itemID))
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// DELETE /api/cart
func ClearCart(svc *cartService.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if err := svc.Clear(c.Request.Context(), userID); err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// GET /api/cart/total
func GetTotal(svc *cartService.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		total, err := svc.Total(c.Request.Context(), userID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"total": total})
	}
}
