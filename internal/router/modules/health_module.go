package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/medli/medli-api/internal/interface/http"
)

// HealthModule wires the per-user health data routes under /api/health.
// Every route requires a bearer token.
type HealthModule struct {
	Handler *handlers.HealthHandler
	Guard   gin.HandlerFunc
}

func NewHealthModule(h *handlers.HealthHandler, guard gin.HandlerFunc) *HealthModule {
	return &HealthModule{Handler: h, Guard: guard}
}

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/health")
	auth.Use(m.Guard)
	{
		auth.POST("/recording", m.Handler.AddRecording)
		auth.GET("/recordings", m.Handler.Recordings)
		auth.GET("/recordings/search", m.Handler.SearchRecordings)
		auth.DELETE("/recording/:id", m.Handler.DeleteRecording)
		auth.POST("/risk-assessment", m.Handler.SaveRiskAssessment)
		auth.GET("/risk-assessment", m.Handler.RiskAssessment)
		auth.POST("/habits", m.Handler.SaveHabits)
		auth.GET("/habits", m.Handler.Habits)
		auth.GET("/export", m.Handler.Export)
		auth.GET("/dashboard", m.Handler.Dashboard)
	}
}
