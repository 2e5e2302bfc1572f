package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/shopverse/storefront-api/controllers/cart"
	orderControllers "github.com/shopverse/storefront-api/controllers/order"
	paymentControllers "github.com/shopverse/storefront-api/controllers/payment"
	productControllers "github.com/shopverse/storefront-api/controllers/product"
	"github.com/shopverse/storefront-api/middleware"
	cartService "github.com/shopverse/storefront-api/services/cart"
	"github.com/shopverse/storefront-api/services/checkout"
	"github.com/shopverse/storefront-api/services/payment"
	"github.com/shopverse/storefront-api/store"
)

// Deps carries everything the route tree needs.
type Deps struct {
	Products store.ProductStore
	Cart     *cartService.Service
	Checkout *checkout.Service
	Payments *payment.Service

	JWTSecret   string
	AdminAPIKey string
}

// SetupRoutes wires the public catalog, the authenticated storefront surface,
// the provider webhook and the admin group.
func SetupRoutes(r *gin.Engine, d Deps) {
	api := r.Group("/api")

	// Public catalog (read-only collaborator surface)
	api.GET("/products", productControllers.ListProducts(d.Products))
	api.GET("/products/:id", productControllers.GetProduct(d.Products))

	// Provider webhook: authenticated by its signature, not by a user token
	api.POST("/payments/webhook", paymentControllers.Webhook(d.Payments))

	// Authenticated storefront
	user := api.Group("", middleware.RequireAuth(d.JWTSecret))
	{
		user.GET("/cart", cartControllers.GetCart(d.Cart))
		user.GET("/cart/total", cartControllers.GetTotal(d.Cart))
		user.POST("/cart/items", cartControllers.AddItem(d.Cart))
		user.PUT("/cart/items/:itemID", cartControllers.UpdateItem(d.Cart))
		user.DELETE("/cart/items/:itemID", cartControllers.RemoveItem(d.Cart))
		user.DELETE("/cart", cartControllers.ClearCart(d.Cart))

		user.POST("/orders", orderControllers.CreateOrder(d.Checkout))
		user.GET("/orders", orderControllers.ListOrders(d.Checkout))
		user.GET("/orders/:orderID", orderControllers.GetOrder(d.Checkout))

		user.POST("/payments/create-intent", paymentControllers.CreateIntent(d.Payments))
	}

	// Admin (API-key protected)
	admin := api.Group("/admin", middleware.RequireAPIKey(d.AdminAPIKey))
	{
		admin.PUT("/orders/:orderID/status", orderControllers.UpdateOrderStatus(d.Payments))
	}
}
