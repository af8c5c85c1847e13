package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-account-core/pkg/response"
)

type Registry struct {
	Engine  *gin.Engine
	API     *gin.RouterGroup
	modules []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	api := engine.Group("/api")
	return &Registry{Engine: engine, API: api}
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// Static serves dir at urlPath, outside the /api group.
func (r *Registry) Static(urlPath, dir string) {
	r.Engine.Static(urlPath, dir)
}

// RegisterAll mounts every module and installs the JSON 404 fallback.
func (r *Registry) RegisterAll() {
	for _, m := range r.modules {
		m.Register(r.API)
	}
	r.Engine.NoRoute(func(c *gin.Context) {
		response.AbortError(c, http.StatusNotFound, "Route not found", nil)
	})
}
