package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"aibc/classify"
	"aibc/common"
	"aibc/config"
	"aibc/pipeline"
	"aibc/sources"
	"aibc/types"

	"github.com/google/uuid"
)

// ErrCycleRunning is returned when a cycle is requested while one is in flight
var ErrCycleRunning = errors.New("signal cycle already running")

// SignalSink persists routed signals; satisfied by *store.Store
type SignalSink interface {
	SaveSignals(cycleID string, signals []types.Signal) error
}

// EnvelopePublisher delivers envelopes to the agent queue; satisfied by *queue.Producer
type EnvelopePublisher interface {
	PublishAll(envelopes []types.Envelope) (int, error)
}

// SeenFilter skips signals already routed in earlier cycles; satisfied by *dedup.SignalBloom
type SeenFilter interface {
	Seen(sig types.Signal) (bool, error)
	Mark(sig types.Signal) error
}

// Fetcher produces one source's signals for a cycle
type Fetcher func(ctx context.Context) sources.Result

// Config selects which sources a pipeline ingests from
type Config struct {
	NewsQuery  string
	NewsAPIKey string
	Community  string
	Feeds      []string
	FeedCount  int
	Enrich     bool
}

// Pipeline runs the ingest, classify, filter, and route cycle. The sink,
// publisher, and seen filter are optional: a missing collaborator degrades
// that step to a logged no-op, never a cycle failure.
type Pipeline struct {
	fetchers  []Fetcher
	sink      SignalSink
	publisher EnvelopePublisher
	seen      SeenFilter
	enrich    bool

	s3       *common.S3
	s3Bucket string
	s3Prefix string

	running atomic.Bool
}

// NewPipeline builds a pipeline with one fetcher per configured source
func NewPipeline(cfg Config, sink SignalSink, publisher EnvelopePublisher, seen SeenFilter) *Pipeline {
	p := &Pipeline{
		sink:      sink,
		publisher: publisher,
		seen:      seen,
		enrich:    cfg.Enrich,
	}

	if cfg.NewsAPIKey != "" {
		query, apiKey := cfg.NewsQuery, cfg.NewsAPIKey
		p.fetchers = append(p.fetchers, func(ctx context.Context) sources.Result {
			return sources.FetchNews(ctx, query, apiKey)
		})
	}

	if cfg.Community != "" {
		community := cfg.Community
		p.fetchers = append(p.fetchers, func(ctx context.Context) sources.Result {
			return sources.FetchSocial(ctx, community)
		})
	}

	feedCount := cfg.FeedCount
	if feedCount <= 0 {
		feedCount = 10
	}
	for _, feed := range cfg.Feeds {
		feed := feed
		p.fetchers = append(p.fetchers, func(ctx context.Context) sources.Result {
			return sources.FetchRSS(ctx, feed, feedCount)
		})
	}

	p.initS3()
	return p
}

// AddFetcher registers an additional source
func (p *Pipeline) AddFetcher(f Fetcher) {
	p.fetchers = append(p.fetchers, f)
}

// Running reports whether a cycle is currently in flight
func (p *Pipeline) Running() bool {
	return p.running.Load()
}

// CycleSummary reports operator-visible counts for one cycle
type CycleSummary struct {
	CycleID        string         `json:"cycle_id"`
	Fetched        map[string]int `json:"fetched"`
	SourceFailures int            `json:"source_failures"`
	Duplicates     int            `json:"duplicates"`
	FilteredOut    int            `json:"filtered_out"`
	Routed         int            `json:"routed"`
	Published      int            `json:"published"`
}

// RunOnce executes a single end-to-end cycle: concurrent source fetch,
// dedup, filter, route, persist, publish, optional archive, summary logs.
// Overlapping invocations are rejected with ErrCycleRunning.
func (p *Pipeline) RunOnce(ctx context.Context) (CycleSummary, error) {
	if !p.running.CompareAndSwap(false, true) {
		return CycleSummary{}, ErrCycleRunning
	}
	defer p.running.Store(false)

	cycleID := uuid.NewString()
	summary := CycleSummary{CycleID: cycleID, Fetched: make(map[string]int)}

	log.Printf("=== Signal Cycle %s ===", cycleID)

	// Fetch every source concurrently. Each fetch is its own failure
	// domain: a failed source logs and contributes zero signals.
	results := make([]sources.Result, len(p.fetchers))
	var wg sync.WaitGroup
	for i, fetch := range p.fetchers {
		wg.Add(1)
		go func(i int, fetch Fetcher) {
			defer wg.Done()
			results[i] = fetch(ctx)
		}(i, fetch)
	}
	wg.Wait()

	var signals []types.Signal
	for _, res := range results {
		if res.Failed() {
			log.Printf("Source %s failed: %v (continuing with remaining sources)", res.Name, res.Err)
			summary.SourceFailures++
			continue
		}
		log.Printf("Source %s: fetched %d signal(s)", res.Name, len(res.Signals))
		summary.Fetched[res.Name] = len(res.Signals)
		signals = append(signals, res.Signals...)
	}

	if p.enrich {
		sources.EnrichContent(signals)
	}

	signals, duplicates := p.dropSeen(signals)
	summary.Duplicates = duplicates

	filtered := pipeline.FilterSignals(signals)
	summary.FilteredOut = len(signals) - len(filtered)
	log.Printf("Filtered %d low-confidence signal(s); %d remaining", summary.FilteredOut, len(filtered))

	envelopes := p.route(cycleID, filtered)
	summary.Routed = len(envelopes)

	p.persist(cycleID, filtered)
	summary.Published = p.publish(envelopes)
	p.archive(ctx, cycleID, envelopes)
	p.markRouted(filtered)

	log.Println("=== Signal Cycle Summary ===")
	log.Printf("Sources:      %d ok, %d failed", len(summary.Fetched), summary.SourceFailures)
	log.Printf("Duplicates:   %d", summary.Duplicates)
	log.Printf("Filtered out: %d", summary.FilteredOut)
	log.Printf("Routed:       %d envelope(s) from %d signal(s)", summary.Routed, len(filtered))
	log.Println("============================")

	return summary, nil
}

// SubmitManual runs one operator-submitted signal through the same
// classify/filter/route/persist/publish path as fetched signals.
// Returns the envelopes produced, or routed=false when the signal was
// dropped by the confidence filter.
func (p *Pipeline) SubmitManual(ctx context.Context, sig types.Signal) ([]types.Envelope, bool, error) {
	if sig.Title == "" && sig.Content == "" {
		return nil, false, fmt.Errorf("manual signal needs a title or content")
	}

	sig.ID = "manual-0"
	sig.Source = types.SourceManual
	if !validCategory(sig.Category) {
		sig.Category = classify.Classify(sig.Title, sig.Content)
	}
	if sig.Confidence == 0 {
		sig.Confidence = config.ManualConfidence
	}
	sig.Confidence = types.ClampConfidence(sig.Confidence)
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = time.Now()
	}

	filtered := pipeline.FilterSignals([]types.Signal{sig})
	if len(filtered) == 0 {
		log.Printf("Manual signal %q dropped by confidence filter (%.2f)", sig.Title, sig.Confidence)
		return nil, false, nil
	}

	cycleID := "manual-" + uuid.NewString()
	envelopes := p.route(cycleID, filtered)
	p.persist(cycleID, filtered)
	published := p.publish(envelopes)
	log.Printf("Manual signal routed to %d agent(s), published %d", len(envelopes), published)

	return envelopes, true, nil
}

// dropSeen removes signals already routed in earlier cycles. Without a seen
// filter, or when the lookup errors, signals pass through.
func (p *Pipeline) dropSeen(signals []types.Signal) ([]types.Signal, int) {
	if p.seen == nil {
		return signals, 0
	}

	kept := make([]types.Signal, 0, len(signals))
	duplicates := 0
	for _, sig := range signals {
		seen, err := p.seen.Seen(sig)
		if err != nil {
			log.Printf("Warning: dedup lookup failed for %s: %v (keeping signal)", sig.ID, err)
			kept = append(kept, sig)
			continue
		}
		if seen {
			duplicates++
			continue
		}
		kept = append(kept, sig)
	}
	return kept, duplicates
}

// markRouted records routed signals in the seen filter after delivery so a
// publish failure does not suppress the signal on the next cycle
func (p *Pipeline) markRouted(signals []types.Signal) {
	if p.seen == nil {
		return
	}
	for _, sig := range signals {
		if err := p.seen.Mark(sig); err != nil {
			log.Printf("Warning: dedup mark failed for %s: %v", sig.ID, err)
		}
	}
}

// route fans each signal out to its agents
func (p *Pipeline) route(cycleID string, signals []types.Signal) []types.Envelope {
	var envelopes []types.Envelope
	now := time.Now()
	for _, sig := range signals {
		for _, agentID := range pipeline.RouteSignal(sig) {
			envelopes = append(envelopes, types.Envelope{
				AgentID:  agentID,
				Signal:   sig,
				CycleID:  cycleID,
				RoutedAt: now,
			})
		}
	}
	return envelopes
}

func (p *Pipeline) persist(cycleID string, signals []types.Signal) {
	if p.sink == nil || len(signals) == 0 {
		return
	}
	if err := p.sink.SaveSignals(cycleID, signals); err != nil {
		log.Printf("Warning: failed to persist %d signal(s): %v", len(signals), err)
	}
}

func (p *Pipeline) publish(envelopes []types.Envelope) int {
	if len(envelopes) == 0 {
		return 0
	}
	if p.publisher == nil {
		log.Printf("Agent queue not configured; skipping %d envelope(s)", len(envelopes))
		return 0
	}

	published, err := p.publisher.PublishAll(envelopes)
	if err != nil {
		log.Printf("Warning: published %d/%d envelope(s): %v", published, len(envelopes), err)
	}
	return published
}

// initS3 configures the optional cycle archive from the environment.
// Required: S3_BUCKET. Optional: S3_REGION, S3_PROFILE, S3_PREFIX,
// S3_USE_PATH_STYLE=true.
func (p *Pipeline) initS3() {
	bucket := strings.TrimSpace(os.Getenv("S3_BUCKET"))
	if bucket == "" {
		return
	}

	cfg := common.S3Config{
		Region:       strings.TrimSpace(os.Getenv("S3_REGION")),
		Profile:      strings.TrimSpace(os.Getenv("S3_PROFILE")),
		UsePathStyle: strings.EqualFold(strings.TrimSpace(os.Getenv("S3_USE_PATH_STYLE")), "true"),
	}
	client, err := common.NewS3(context.Background(), cfg)
	if err != nil {
		log.Printf("Warning: failed to init S3 client: %v (archive disabled)", err)
		return
	}

	prefix := strings.TrimSpace(os.Getenv("S3_PREFIX"))
	if prefix != "" {
		prefix = strings.Trim(prefix, "/") + "/"
	}

	p.s3 = client
	p.s3Bucket = bucket
	p.s3Prefix = prefix
}

// archive uploads the cycle's routed envelopes as one JSON object
func (p *Pipeline) archive(ctx context.Context, cycleID string, envelopes []types.Envelope) {
	if p.s3 == nil || len(envelopes) == 0 {
		return
	}

	payload := map[string]interface{}{
		"cycle_id":    cycleID,
		"archived_at": time.Now(),
		"envelopes":   envelopes,
	}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		log.Printf("Warning: failed to encode cycle archive: %v", err)
		return
	}

	key := p.s3Prefix + "cycles/" + cycleID + ".json"
	uctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := p.s3.Put(uctx, p.s3Bucket, key, bytes.NewReader(b), "application/json"); err != nil {
		log.Printf("Warning: S3 archive failed for cycle %s: %v", cycleID, err)
		return
	}
	log.Printf("Archived cycle %s to s3://%s/%s", cycleID, p.s3Bucket, key)
}

func validCategory(c types.Category) bool {
	for _, known := range types.Categories {
		if c == known {
			return true
		}
	}
	return false
}
