package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-cart/internal/domain"
)

type ctxKey string

const (
	projectCtxKey  ctxKey = "project"
	customerCtxKey ctxKey = "customer"
	tokenCtxKey    ctxKey = "token"
)

func projectMiddleware(repo ProjectRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.Param("projectKey"))
		if key == "" {
			abortWithError(c, domain.NewError(domain.KindInvalidInput, "projectKey required"))
			return
		}
		project, err := repo.GetByKey(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				abortWithError(c, domain.Errorf(domain.KindNotFound, "project %s not found", key))
				return
			}
			abortWithError(c, err)
			return
		}
		ctx := context.WithValue(c.Request.Context(), projectCtxKey, project)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// authMiddleware resolves the bearer token to a customer of the current project.
func authMiddleware(svc CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abortWithError(c, domain.NewError(domain.KindNotAuthenticated, "missing bearer token"))
			return
		}
		project := projectFrom(c)
		customer, err := svc.LookupByToken(c.Request.Context(), project.ID, token)
		if err != nil {
			abortWithError(c, err)
			return
		}
		ctx := context.WithValue(c.Request.Context(), customerCtxKey, customer)
		ctx = context.WithValue(ctx, tokenCtxKey, token)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func projectFrom(c *gin.Context) *domain.Project {
	p, _ := c.Request.Context().Value(projectCtxKey).(*domain.Project)
	return p
}

func customerFrom(c *gin.Context) *domain.Customer {
	cust, _ := c.Request.Context().Value(customerCtxKey).(*domain.Customer)
	return cust
}

func tokenFrom(c *gin.Context) string {
	t, _ := c.Request.Context().Value(tokenCtxKey).(string)
	return t
}

// requestLogger logs one line per request through zap.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}
