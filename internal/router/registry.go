package router

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/medli/medli-api/internal/interface/http"
)

type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	System      *handlers.SystemHandler
	middlewares []gin.HandlerFunc
	modules     []Module
}

// NewRegistry mounts the public root and the "Route not found" fallback on engine.
// Feature modules are registered under /api.
func NewRegistry(engine *gin.Engine) *Registry {
	sys := handlers.NewSystemHandler()
	engine.HandleMethodNotAllowed = false
	engine.NoRoute(sys.NotFound)
	engine.GET("/", sys.Root)

	api := engine.Group("/api")
	return &Registry{Engine: engine, API: api, System: sys}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
