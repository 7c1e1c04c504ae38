package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medli/medli-api/pkg/response"
)

const (
	APIVersion       = "1.0.0"
	MsgRouteNotFound = "Route not found"
)

type SystemHandler struct {
	Now func() time.Time
}

func NewSystemHandler() *SystemHandler {
	return &SystemHandler{Now: time.Now}
}

// Root GET /
func (h *SystemHandler) Root(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"message": "Welcome to Medli Health API",
		"version": APIVersion,
		"endpoints": gin.H{
			"health":     "/api/health",
			"auth":       "/api/auth",
			"healthData": "/api/health",
		},
	})
}

// Liveness GET /api/health
func (h *SystemHandler) Liveness(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"message":   "Medli API is running",
		"timestamp": h.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

// NotFound answers unmatched routes and methods.
func (h *SystemHandler) NotFound(c *gin.Context) {
	response.Error(c, http.StatusNotFound, MsgRouteNotFound)
}
