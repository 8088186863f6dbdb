package store

import (
	"path/filepath"
	"testing"
	"time"

	"aibc/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "signals.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	return s
}

func TestSaveAndListSignals(t *testing.T) {
	s := openTestStore(t)

	signals := []types.Signal{
		{
			ID:         "news-0",
			Source:     types.SourceNews,
			Category:   types.CategoryCompetitor,
			Title:      "Rival launch",
			Confidence: 0.75,
			Metadata:   map[string]interface{}{"source_id": "example"},
			CreatedAt:  time.Now(),
		},
		{
			ID:         "social-0",
			Source:     types.SourceSocial,
			Category:   types.CategoryViral,
			Title:      "Campaign blew up",
			Confidence: 0.95,
			CreatedAt:  time.Now(),
		},
	}

	if err := s.SaveSignals("cycle-1", signals); err != nil {
		t.Fatalf("SaveSignals failed: %v", err)
	}

	all, err := s.ListSignals(ListFilter{})
	if err != nil {
		t.Fatalf("ListSignals failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("listed %d records; want 2", len(all))
	}
	for _, rec := range all {
		if rec.ID == rec.SignalID {
			t.Errorf("row key %q must not reuse the batch-scoped signal ID", rec.ID)
		}
		if rec.CycleID != "cycle-1" {
			t.Errorf("record cycle = %q; want cycle-1", rec.CycleID)
		}
	}
}

func TestListSignalsFilters(t *testing.T) {
	s := openTestStore(t)

	signals := []types.Signal{
		{ID: "news-0", Source: types.SourceNews, Category: types.CategoryMarket, Title: "a", Confidence: 0.75},
		{ID: "social-0", Source: types.SourceSocial, Category: types.CategoryViral, Title: "b", Confidence: 0.95},
		{ID: "social-1", Source: types.SourceSocial, Category: types.CategoryMarket, Title: "c", Confidence: 0.65},
	}
	if err := s.SaveSignals("cycle-1", signals); err != nil {
		t.Fatalf("SaveSignals failed: %v", err)
	}

	bySource, err := s.ListSignals(ListFilter{Source: "social"})
	if err != nil {
		t.Fatalf("ListSignals failed: %v", err)
	}
	if len(bySource) != 2 {
		t.Fatalf("source filter returned %d records; want 2", len(bySource))
	}

	byCategory, err := s.ListSignals(ListFilter{Category: "market"})
	if err != nil {
		t.Fatalf("ListSignals failed: %v", err)
	}
	if len(byCategory) != 2 {
		t.Fatalf("category filter returned %d records; want 2", len(byCategory))
	}

	byConfidence, err := s.ListSignals(ListFilter{MinConfidence: 0.9})
	if err != nil {
		t.Fatalf("ListSignals failed: %v", err)
	}
	if len(byConfidence) != 1 || byConfidence[0].SignalID != "social-0" {
		t.Fatalf("confidence filter returned %v; want only social-0", byConfidence)
	}

	limited, err := s.ListSignals(ListFilter{Limit: 1})
	if err != nil {
		t.Fatalf("ListSignals failed: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limit 1 returned %d records", len(limited))
	}
}

func TestStats(t *testing.T) {
	s := openTestStore(t)

	signals := []types.Signal{
		{ID: "news-0", Source: types.SourceNews, Category: types.CategoryMarket, Confidence: 0.75},
		{ID: "news-1", Source: types.SourceNews, Category: types.CategoryMarket, Confidence: 0.75},
		{ID: "news-2", Source: types.SourceNews, Category: types.CategoryCompetitor, Confidence: 0.75},
	}
	if err := s.SaveSignals("cycle-1", signals); err != nil {
		t.Fatalf("SaveSignals failed: %v", err)
	}

	counts, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	got := make(map[string]int64)
	for _, c := range counts {
		got[c.Category] = c.Count
	}
	if got["market"] != 2 || got["competitor"] != 1 {
		t.Fatalf("Stats = %v; want market=2 competitor=1", got)
	}
}

func TestSaveAgentOutput(t *testing.T) {
	s := openTestStore(t)

	out := AgentOutput{
		AgentID:  "content_director",
		SignalID: "social-0",
		CycleID:  "cycle-1",
		Status:   "received",
		Payload:  `{"id":"social-0"}`,
	}
	if err := s.SaveAgentOutput(out); err != nil {
		t.Fatalf("SaveAgentOutput failed: %v", err)
	}

	var stored AgentOutput
	if err := s.db.First(&stored, "agent_id = ?", "content_director").Error; err != nil {
		t.Fatalf("failed to read back agent output: %v", err)
	}
	if stored.SignalID != "social-0" || stored.Status != "received" {
		t.Fatalf("stored output = %+v", stored)
	}
	if stored.CreatedAt.IsZero() {
		t.Error("CreatedAt should default to insertion time")
	}
}

func TestSaveSignalsEmptyBatch(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveSignals("cycle-1", nil); err != nil {
		t.Fatalf("empty batch must be a no-op, got %v", err)
	}
}
