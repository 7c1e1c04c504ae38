package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/medli/medli-api/internal/domain/entity"
	"github.com/medli/medli-api/pkg/apperror"
	"github.com/medli/medli-api/pkg/response"
)

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

const bearerPrefix = "Bearer "

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(h[len(bearerPrefix):])
}

// Auth rejects requests without a valid bearer token.
// It sets userID, userName, userEmail and user in the Gin context on success.
func Auth(authn Authenticator, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := authn.Authenticate(c.Request.Context(), BearerToken(c))
		if err != nil {
			ae := apperror.From(err, "Server error during authentication")
			if ae.Kind == apperror.Internal && logger != nil {
				logger.WithError(err).WithField(CtxRequestIDKey, c.GetString(CtxRequestIDKey)).Error("authentication failed")
			}
			response.Abort(c, ae.Kind.Status(), ae.Message)
			return
		}

		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxUserNameKey, u.Name)
		c.Set(CtxUserEmailKey, u.Email)
		c.Set(CtxUserKey, u)
		c.Next()
	}
}
