package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-cart/internal/api"
	"storefront-cart/internal/domain"
	cartsvc "storefront-cart/internal/service/cart"
)

func ownerFrom(c *gin.Context) cartsvc.Owner {
	o := cartsvc.Owner{}
	if p := projectFrom(c); p != nil {
		o.ProjectID = p.ID
	}
	if cust := customerFrom(c); cust != nil {
		o.CustomerID = cust.ID
	}
	return o
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, domain.WrapError(domain.KindInvalidInput, "invalid request body", err))
		return false
	}
	return true
}

func writeCart(c *gin.Context, status int, res *cartsvc.Result, err error) {
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(status, api.Envelope{
		Success: true,
		Message: res.Message,
		Data:    res.Cart,
		Warning: res.Warning,
		Meta:    api.CartMeta(res.Cart),
	})
}

func (h *handlers) fetchCart(c *gin.Context) {
	res, err := h.deps.CartSvc.Fetch(c.Request.Context(), ownerFrom(c))
	writeCart(c, http.StatusOK, res, err)
}

func (h *handlers) addItem(c *gin.Context) {
	var req api.AddItemRequest
	if !bindJSON(c, &req) {
		return
	}
	productType, err := domain.ParseProductType(req.ProductType)
	if err != nil {
		abortWithError(c, err)
		return
	}
	res, err := h.deps.CartSvc.AddSimple(c.Request.Context(), ownerFrom(c), cartsvc.AddSimpleInput{
		ProductID:   req.ProductID,
		ProductType: productType,
		Quantity:    req.Quantity,
		Currency:    req.Currency,
	})
	writeCart(c, http.StatusOK, res, err)
}

func (h *handlers) addMenuItem(c *gin.Context) {
	var req api.AddMenuItemRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.deps.CartSvc.AddMenuLine(c.Request.Context(), ownerFrom(c), cartsvc.AddMenuInput{
		MenuItemID:      req.MenuItemID,
		Quantity:        req.Quantity,
		VariantCode:     req.VariantCode,
		Modifiers:       req.Modifiers,
		DepositIncluded: req.DepositIncluded,
		Notes:           req.Notes,
		PriceHint:       req.PriceHint,
		Currency:        req.Currency,
	})
	writeCart(c, http.StatusOK, res, err)
}

func (h *handlers) updateLine(c *gin.Context) {
	var req api.UpdateLineRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.deps.CartSvc.UpdateLine(c.Request.Context(), ownerFrom(c), c.Param("key"), cartsvc.LineChanges{
		Quantity:        req.Quantity,
		VariantCode:     req.VariantCode,
		Modifiers:       req.Modifiers,
		DepositIncluded: req.DepositIncluded,
		Notes:           req.Notes,
	})
	writeCart(c, http.StatusOK, res, err)
}

func (h *handlers) increaseLine(c *gin.Context) {
	res, err := h.deps.CartSvc.Increase(c.Request.Context(), ownerFrom(c), c.Param("key"))
	writeCart(c, http.StatusOK, res, err)
}

func (h *handlers) decreaseLine(c *gin.Context) {
	res, err := h.deps.CartSvc.Decrease(c.Request.Context(), ownerFrom(c), c.Param("key"))
	writeCart(c, http.StatusOK, res, err)
}

func (h *handlers) removeLine(c *gin.Context) {
	res, err := h.deps.CartSvc.Remove(c.Request.Context(), ownerFrom(c), c.Param("key"))
	writeCart(c, http.StatusOK, res, err)
}

func (h *handlers) clearCart(c *gin.Context) {
	res, err := h.deps.CartSvc.Clear(c.Request.Context(), ownerFrom(c))
	writeCart(c, http.StatusOK, res, err)
}

func (h *handlers) cancelCart(c *gin.Context) {
	res, err := h.deps.CartSvc.Cancel(c.Request.Context(), ownerFrom(c))
	writeCart(c, http.StatusOK, res, err)
}

func (h *handlers) updatePricing(c *gin.Context) {
	var req api.PricingRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.deps.CartSvc.UpdatePricing(c.Request.Context(), ownerFrom(c), cartsvc.PricingInput{
		TipAmount:   req.TipAmount,
		DeliveryFee: req.DeliveryFee,
		ServiceFee:  req.ServiceFee,
		CouponCode:  req.CouponCode,
		Currency:    req.Currency,
	})
	writeCart(c, http.StatusOK, res, err)
}

// checkout answers with the order as data; the storefront resets its cart.
func (h *handlers) checkout(c *gin.Context) {
	var req api.CheckoutRequest
	// an absent body still reaches the cart preconditions
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	res, err := h.deps.CartSvc.Checkout(c.Request.Context(), ownerFrom(c), cartsvc.CheckoutInput{
		ServiceType:   req.ServiceType,
		PaymentMethod: req.PaymentMethod,
		AddressID:     req.AddressID,
		Address:       req.Address,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.Envelope{Success: true, Message: "order placed", Data: res.Order, Warning: res.Warning})
}
