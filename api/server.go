package api

import (
	"github.com/gin-gonic/gin"

	"aibc/orchestrator"
	"aibc/store"
)

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(p *orchestrator.Pipeline, s *store.Store) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	RegisterHealthRoutes(r)
	RegisterSignalRoutes(r, p, s)
	RegisterPipelineRoutes(r, p)
	return r
}
