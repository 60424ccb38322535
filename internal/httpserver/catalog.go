package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-cart/internal/api"
	"storefront-cart/internal/domain"
)

func (h *handlers) listProducts(c *gin.Context) {
	var productType domain.ProductType
	if raw := c.Query("productType"); raw != "" {
		t, err := domain.ParseProductType(raw)
		if err != nil {
			abortWithError(c, err)
			return
		}
		productType = t
	}
	products, err := h.deps.CatalogSvc.List(c.Request.Context(), projectFrom(c).ID, productType)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	c.JSON(http.StatusOK, api.Envelope{Data: products})
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.CatalogSvc.Get(c.Request.Context(), projectFrom(c).ID, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.Envelope{Data: p})
}
