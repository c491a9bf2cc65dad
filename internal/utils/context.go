// internal/utils/context.go
package utils

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/catalog-api/internal/models"
)

// Keys under which middleware stores request-scoped values.
const (
	ContextKeyLang      = "lang"
	ContextKeyRequestID = "request_id"
	ContextKeyIdentity  = "identity"
	ContextKeyToken     = "session_token"
)

func GetLangFromContext(c *gin.Context) string {
	if lang, exists := c.Get(ContextKeyLang); exists {
		if langStr, ok := lang.(string); ok {
			return langStr
		}
	}
	return "en"
}

func GetRequestIDFromContext(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

// GetIdentityFromContext returns nil for anonymous requests.
func GetIdentityFromContext(c *gin.Context) *models.Identity {
	if value, exists := c.Get(ContextKeyIdentity); exists {
		if identity, ok := value.(*models.Identity); ok {
			return identity
		}
	}
	return nil
}

func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	if identity := GetIdentityFromContext(c); identity != nil {
		return identity.UserID, true
	}
	return 0, false
}

func GetTokenFromContext(c *gin.Context) string {
	return c.GetString(ContextKeyToken)
}

type requestIDKey struct{}

// ContextWithRequestID carries the correlation id into service code.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
