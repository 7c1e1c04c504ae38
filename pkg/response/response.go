package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/medli/medli-api/pkg/apperror"
)

// Body is the JSON envelope every endpoint answers with:
// {"success": bool, ...payload} on success, {"success": false, "error": msg} on failure.
type Body map[string]any

func build(success bool, payload gin.H) Body {
	b := make(Body, len(payload)+1)
	for k, v := range payload {
		b[k] = v
	}
	b["success"] = success
	return b
}

// Success writes status and the payload fields next to "success": true.
func Success(c *gin.Context, status int, payload gin.H) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, build(true, payload))
}

// Error writes {"success": false, "error": message}.
func Error(c *gin.Context, status int, message string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, build(false, gin.H{"error": message}))
}

// Abort is Error for middleware: it stops the handler chain.
func Abort(c *gin.Context, status int, message string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(status, build(false, gin.H{"error": message}))
}

// FromError maps err onto its status code and client message.
// Internal failures are logged with the cause; clients only see the message.
func FromError(c *gin.Context, logger logrus.FieldLogger, err error, fallback string) {
	ae := apperror.From(err, fallback)
	if ae.Kind == apperror.Internal && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"user_id":    c.GetString("userID"),
			"path":       c.FullPath(),
		}).Error(ae.Message)
	}
	Error(c, ae.Kind.Status(), ae.Message)
}
