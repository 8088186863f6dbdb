package store

import "time"

// SignalRecord is the persisted form of a routed signal. Rows are keyed by
// UUID because signal IDs are batch-scoped and repeat across cycles.
type SignalRecord struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	SignalID   string    `json:"signal_id" gorm:"index"`
	CycleID    string    `json:"cycle_id" gorm:"index"`
	Source     string    `json:"source" gorm:"index"`
	Category   string    `json:"category" gorm:"index"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	URL        string    `json:"url"`
	Confidence float64   `json:"confidence"`
	Metadata   string    `json:"metadata"`
	CreatedAt  time.Time `json:"created_at"`
	IngestedAt time.Time `json:"ingested_at"`
}

// AgentOutput records a delivery to (or result from) a downstream agent
type AgentOutput struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AgentID   string    `json:"agent_id" gorm:"index"`
	SignalID  string    `json:"signal_id" gorm:"index"`
	CycleID   string    `json:"cycle_id"`
	Status    string    `json:"status"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}
