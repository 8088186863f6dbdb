package api

import (
	"context"
	"errors"
	"log"
	"net/http"

	"aibc/orchestrator"

	"github.com/gin-gonic/gin"
)

// RegisterPipelineRoutes registers the cycle trigger endpoint.
func RegisterPipelineRoutes(r *gin.Engine, p *orchestrator.Pipeline) {
	g := r.Group("/api/pipeline")
	g.POST("/run", handlePipelineRun(p))
}

// handlePipelineRun triggers a signal cycle. It runs asynchronously and
// returns 202 Accepted immediately; an in-flight cycle yields 409.
func handlePipelineRun(p *orchestrator.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p.Running() {
			c.JSON(http.StatusConflict, gin.H{"status": "cycle already running"})
			return
		}

		go func() {
			if _, err := p.RunOnce(context.Background()); err != nil && !errors.Is(err, orchestrator.ErrCycleRunning) {
				log.Printf("Triggered cycle failed: %v", err)
			}
		}()

		c.JSON(http.StatusAccepted, gin.H{"status": "cycle started"})
	}
}
