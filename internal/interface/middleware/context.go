package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/medli/medli-api/internal/domain/entity"
)

// Gin context keys set by this package.
const (
	CtxUserIDKey    = "userID"
	CtxUserNameKey  = "userName"
	CtxUserEmailKey = "userEmail"
	CtxUserKey      = "user"
	CtxRealIPKey    = "real_ip"
	CtxRequestIDKey = "request_id"
)

// CurrentUser returns the user attached by Auth, or nil on public routes.
func CurrentUser(c *gin.Context) *entity.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}

// ClientIP prefers the address resolved by RealIP.
func ClientIP(c *gin.Context) string {
	if ip := c.GetString(CtxRealIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}
