package types

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Source identifies where a signal was ingested from
type Source string

const (
	SourceNews   Source = "news"
	SourceSocial Source = "social"
	SourceManual Source = "manual"
)

// Category is one of the seven classification buckets used for routing
type Category string

const (
	CategoryCompetitor    Category = "competitor"
	CategoryMarket        Category = "market"
	CategoryRegulatory    Category = "regulatory"
	CategoryCultural      Category = "cultural"
	CategoryViral         Category = "viral"
	CategoryPlatform      Category = "platform"
	CategoryInternalBrand Category = "internal_brand"
)

// Categories lists every valid category value
var Categories = []Category{
	CategoryCompetitor,
	CategoryMarket,
	CategoryRegulatory,
	CategoryCultural,
	CategoryViral,
	CategoryPlatform,
	CategoryInternalBrand,
}

// AgentID identifies a downstream agent role that consumes routed signals
type AgentID string

const (
	AgentCompetitorIntelligence AgentID = "competitor_intelligence"
	AgentGrowthStrategy         AgentID = "growth_strategy"
	AgentContentDirector        AgentID = "content_director"
	AgentBrandArchitect         AgentID = "brand_architect"
)

// Signal is a normalized unit of external information considered for action.
// Signals are created by the ingestion adapters and immutable afterwards.
type Signal struct {
	ID         string                 `json:"id"`
	Source     Source                 `json:"source"`
	Category   Category               `json:"category"`
	Title      string                 `json:"title"`
	Content    string                 `json:"content"`
	URL        string                 `json:"url,omitempty"`
	Confidence float64                `json:"confidence"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// Envelope is the unit delivered to the downstream agent queue: one routed
// signal addressed to one agent
type Envelope struct {
	AgentID  AgentID   `json:"agent_id"`
	Signal   Signal    `json:"signal"`
	CycleID  string    `json:"cycle_id,omitempty"`
	RoutedAt time.Time `json:"routed_at"`
}

// ContentHash creates a short, stable hash from the given string input.
// Used for cross-cycle dedup keys, never for signal IDs.
func ContentHash(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}

// ClampConfidence bounds a confidence value to [0,1]
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
