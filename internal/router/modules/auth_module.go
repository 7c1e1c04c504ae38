package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/medli/medli-api/internal/interface/http"
)

// AuthModule wires account routes under /api/auth.
// Public: POST /register, POST /login (shared per-IP limiter counting failures only)
// Protected: GET /me, PUT /profile, POST /change-password, DELETE /account
type AuthModule struct {
	Handler *handlers.AuthHandler
	Guard   gin.HandlerFunc
	Limiter gin.HandlerFunc
}

func NewAuthModule(h *handlers.AuthHandler, guard, limiter gin.HandlerFunc) *AuthModule {
	return &AuthModule{Handler: h, Guard: guard, Limiter: limiter}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/auth")

	g.POST("/register", m.Limiter, m.Handler.Register)
	g.POST("/login", m.Limiter, m.Handler.Login)

	auth := g.Group("/")
	auth.Use(m.Guard)
	{
		auth.GET("/me", m.Handler.Me)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.POST("/change-password", m.Handler.ChangePassword)
		auth.DELETE("/account", m.Handler.DeleteAccount)
	}
}
