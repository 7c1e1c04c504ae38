package middleware

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/medli/medli-api/pkg/response"
)

const MsgServerError = "Server error"

// Recovery turns a panic into a 500 envelope and logs it.
func Recovery(logger logrus.FieldLogger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		if logger != nil {
			logger.WithFields(logrus.Fields{
				"panic":      recovered,
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
				"request_id": c.GetString(CtxRequestIDKey),
			}).Error("panic recovered")
		}
		response.Abort(c, http.StatusInternalServerError, MsgServerError)
	})
}
