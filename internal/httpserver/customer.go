package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-cart/internal/api"
	"storefront-cart/internal/domain"
	customersvc "storefront-cart/internal/service/customer"
)

type handlers struct {
	deps   Deps
	logger *zap.Logger
}

type tokenRequest struct {
	GrantType    string `form:"grant_type" binding:"required"`
	Username     string `form:"username"`
	Password     string `form:"password"`
	RefreshToken string `form:"refresh_token"`
	Scope        string `form:"scope"`
}

func toAddressInput(a api.AddressRequest) customersvc.AddressInput {
	return customersvc.AddressInput{
		AddressType: a.AddressType,
		Name:        a.Name,
		Phone:       a.Phone,
		Street:      a.Street,
		City:        a.City,
		PostalCode:  a.PostalCode,
		Country:     a.Country,
	}
}

func (h *handlers) signup(c *gin.Context) {
	var req api.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, domain.WrapError(domain.KindInvalidInput, "invalid signup body", err))
		return
	}
	in := customersvc.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	for _, a := range req.Addresses {
		in.Addresses = append(in.Addresses, toAddressInput(a))
	}
	customer, err := h.deps.CustomerSvc.Signup(c.Request.Context(), projectFrom(c).ID, in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.Envelope{Success: true, Message: "account created", Data: customer})
}

func (h *handlers) token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		abortWithError(c, domain.WrapError(domain.KindInvalidInput, "grant_type required", err))
		return
	}
	project := projectFrom(c)
	ctx := c.Request.Context()

	var resp api.TokenResponse
	switch req.GrantType {
	case "password":
		if req.Username == "" || req.Password == "" {
			abortWithError(c, domain.NewError(domain.KindInvalidInput, "username and password required"))
			return
		}
		_, access, refresh, err := h.deps.CustomerSvc.Login(ctx, project.ID, req.Username, req.Password)
		if err != nil {
			abortWithError(c, err)
			return
		}
		resp.AccessToken, resp.RefreshToken = access, refresh
	case "refresh_token":
		if req.RefreshToken == "" {
			abortWithError(c, domain.NewError(domain.KindInvalidInput, "refresh_token required"))
			return
		}
		access, err := h.deps.CustomerSvc.Refresh(ctx, project.ID, req.RefreshToken)
		if err != nil {
			abortWithError(c, err)
			return
		}
		resp.AccessToken = access
	default:
		abortWithError(c, domain.Errorf(domain.KindInvalidInput, "unsupported grant_type %q", req.GrantType))
		return
	}

	resp.TokenType = "Bearer"
	resp.ExpiresIn = h.deps.CustomerSvc.AccessTTLSeconds()
	resp.Scope = strings.TrimSpace(req.Scope)
	if resp.Scope == "" {
		resp.Scope = "manage_my_cart:" + project.Key
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) me(c *gin.Context) {
	c.JSON(http.StatusOK, api.Envelope{Data: customerFrom(c)})
}

func (h *handlers) logout(c *gin.Context) {
	if err := h.deps.CustomerSvc.Logout(c.Request.Context(), tokenFrom(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.Envelope{Success: true, Message: "logged out"})
}

func (h *handlers) listAddresses(c *gin.Context) {
	addresses, err := h.deps.CustomerSvc.Addresses(c.Request.Context(), projectFrom(c).ID, customerFrom(c).ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if addresses == nil {
		addresses = []domain.CustomerAddress{}
	}
	c.JSON(http.StatusOK, api.Envelope{Data: addresses})
}

func (h *handlers) addAddress(c *gin.Context) {
	var req api.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, domain.WrapError(domain.KindInvalidInput, "invalid address body", err))
		return
	}
	addresses, err := h.deps.CustomerSvc.AddAddress(c.Request.Context(), projectFrom(c).ID, customerFrom(c).ID, toAddressInput(req))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.Envelope{Success: true, Message: "address saved", Data: addresses})
}
