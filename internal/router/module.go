package router

import "github.com/gin-gonic/gin"

// Module is a feature area (auth, health data, system, debug) that mounts its
// routes under the /api group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
