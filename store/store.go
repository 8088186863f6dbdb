package store

import (
	"encoding/json"
	"fmt"
	"time"

	"aibc/types"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store is the persistence sink for signals and agent outputs
type Store struct {
	db *gorm.DB
}

// Open connects to the sqlite database at path and migrates the schema
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&SignalRecord{}, &AgentOutput{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// SaveSignals batch-inserts signals for a cycle
func (s *Store) SaveSignals(cycleID string, signals []types.Signal) error {
	if len(signals) == 0 {
		return nil
	}

	records := make([]SignalRecord, 0, len(signals))
	for _, sig := range signals {
		metadata := ""
		if sig.Metadata != nil {
			if b, err := json.Marshal(sig.Metadata); err == nil {
				metadata = string(b)
			}
		}

		records = append(records, SignalRecord{
			ID:         uuid.NewString(),
			SignalID:   sig.ID,
			CycleID:    cycleID,
			Source:     string(sig.Source),
			Category:   string(sig.Category),
			Title:      sig.Title,
			Content:    sig.Content,
			URL:        sig.URL,
			Confidence: sig.Confidence,
			Metadata:   metadata,
			CreatedAt:  sig.CreatedAt,
			IngestedAt: time.Now(),
		})
	}

	return s.db.Create(&records).Error
}

// SaveAgentOutput records a single agent delivery or result
func (s *Store) SaveAgentOutput(out AgentOutput) error {
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now()
	}
	return s.db.Create(&out).Error
}

// ListFilter narrows a signal listing; zero values mean "no constraint"
type ListFilter struct {
	Source        string
	Category      string
	MinConfidence float64
	Limit         int
}

// ListSignals returns persisted signals matching the filter, newest first
func (s *Store) ListSignals(f ListFilter) ([]SignalRecord, error) {
	query := s.db.Model(&SignalRecord{})

	if f.Source != "" {
		query = query.Where("source = ?", f.Source)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.MinConfidence > 0 {
		query = query.Where("confidence >= ?", f.MinConfidence)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	var records []SignalRecord
	err := query.Order("ingested_at DESC").Limit(limit).Find(&records).Error
	return records, err
}

// CategoryCount is one row of the per-category stats
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// Stats returns signal counts grouped by category
func (s *Store) Stats() ([]CategoryCount, error) {
	var counts []CategoryCount
	err := s.db.Model(&SignalRecord{}).
		Select("category, count(*) as count").
		Group("category").
		Order("count DESC").
		Find(&counts).Error
	return counts, err
}
