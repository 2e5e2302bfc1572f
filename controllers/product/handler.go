package productControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/shopverse/storefront-api/apperr"
	"github.com/shopverse/storefront-api/controllers/httpx"
	"github.com/shopverse/storefront-api/store"
)

// GET /api/products
func ListProducts(products store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := store.ProductFilter{
			Category:  c.Query("category"),
			Search:    c.Query("search"),
			SortBy:    c.DefaultQuery("sort_by", "created_at"),
			SortOrder: c.DefaultQuery("sort_order", "desc"),
		}
		f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
		f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

		if v := c.Query("min_price"); v != "" {
			p, err := decimal.NewFromString(v)
			if err != nil || p.IsNegative() {
				httpx.Error(c, apperr.New(apperr.CodeInvalidInput, "invalid min_price"))
				return
			}
			f.MinPrice = &p
		}
		if v := c.Query("max_price"); v != "" {
			p, err := decimal.NewFromString(v)
			if err != nil || p.IsNegative() {
				httpx.Error(c, apperr.New(apperr.CodeInvalidInput, "invalid max_price"))
				return
			}
			f.MaxPrice = &p
		}

		page, err := products.List(c.Request.Context(), f)
		if err != nil {
			httpx.Error(c, apperr.Wrap(apperr.CodeInternal, "failed to list products", err))
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GET /api/products/:id
func GetProduct(products store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			httpx.Error(c, apperr.New(apperr.CodeInvalidInput, "invalid product id"))
			return
		}

		product, err := products.Get(c.Request.Context(), uint(id))
		switch {
		case err == nil && product.IsActive:
		case err == nil || errors.Is(err, store.ErrNotFound):
			httpx.Error(c, apperr.New(apperr.CodeNotFound, "product not found"))
			return
		default:
			httpx.Error(c, apperr.Wrap(apperr.CodeInternal, "failed to load product", err))
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
