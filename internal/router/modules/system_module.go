package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/medli/medli-api/internal/interface/http"
)

// SystemModule serves the public liveness check at GET /api/health.
type SystemModule struct {
	Handler *handlers.SystemHandler
}

func NewSystemModule(h *handlers.SystemHandler) *SystemModule {
	return &SystemModule{Handler: h}
}

func (m *SystemModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", m.Handler.Liveness)
}
