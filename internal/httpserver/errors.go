package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-cart/internal/api"
	"storefront-cart/internal/domain"
)

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindNotAuthenticated:
		return http.StatusUnauthorized
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidOperation, domain.KindCurrencyMismatch:
		return http.StatusConflict
	case domain.KindInvalidCoupon, domain.KindEmptyCart, domain.KindMissingShippingAddress:
		return http.StatusUnprocessableEntity
	case domain.KindUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorBody maps err onto the wire. Unkinded errors never leak their text.
func errorBody(err error) (int, api.ErrorBody) {
	kind := domain.KindOf(err)
	body := api.ErrorBody{Success: false, Kind: string(kind)}
	var derr *domain.Error
	if errors.As(err, &derr) {
		body.Message = derr.Message
		body.Redirect = derr.Redirect
	}
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		body.Kind = "Internal"
		body.Message = "internal error"
		body.Redirect = ""
	}
	if body.Message == "" {
		body.Message = http.StatusText(status)
	}
	return status, body
}

func abortWithError(c *gin.Context, err error) {
	status, body := errorBody(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}
