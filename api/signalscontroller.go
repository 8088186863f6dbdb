package api

import (
	"net/http"
	"strconv"

	"aibc/orchestrator"
	"aibc/store"
	"aibc/types"

	"github.com/gin-gonic/gin"
)

// RegisterSignalRoutes registers signal listing, stats, and manual intake.
func RegisterSignalRoutes(r *gin.Engine, p *orchestrator.Pipeline, s *store.Store) {
	g := r.Group("/api/signals")
	g.GET("", handleListSignals(s))
	g.GET("/stats", handleSignalStats(s))
	g.POST("", handleSubmitSignal(p))
}

// handleListSignals returns persisted signals filtered by query params.
// GET /api/signals?source=&category=&min_confidence=&limit=
func handleListSignals(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		minConfidence, _ := strconv.ParseFloat(c.DefaultQuery("min_confidence", "0"), 64)

		records, err := s.ListSignals(store.ListFilter{
			Source:        c.Query("source"),
			Category:      c.Query("category"),
			MinConfidence: minConfidence,
			Limit:         limit,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, records)
	}
}

// handleSignalStats returns signal counts grouped by category.
func handleSignalStats(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := s.Stats()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": counts})
	}
}

// submitSignalRequest is the manual intake payload. Category and confidence
// are optional; missing values are derived the same way fetched signals get
// theirs.
type submitSignalRequest struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	URL        string  `json:"url"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// handleSubmitSignal accepts an operator-submitted signal and runs it
// through the full pipeline synchronously.
func handleSubmitSignal(p *orchestrator.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req submitSignalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		sig := types.Signal{
			Title:      req.Title,
			Content:    req.Content,
			URL:        req.URL,
			Category:   types.Category(req.Category),
			Confidence: req.Confidence,
		}

		envelopes, routed, err := p.SubmitManual(c.Request.Context(), sig)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if !routed {
			c.JSON(http.StatusOK, gin.H{"status": "filtered", "routed_to": []string{}})
			return
		}

		agents := make([]string, 0, len(envelopes))
		for _, env := range envelopes {
			agents = append(agents, string(env.AgentID))
		}
		c.JSON(http.StatusOK, gin.H{"status": "routed", "routed_to": agents})
	}
}
