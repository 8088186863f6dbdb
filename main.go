package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"aibc/agents"
	"aibc/api"
	"aibc/config"
	"aibc/dedup"
	"aibc/orchestrator"
	"aibc/queue"
	"aibc/store"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()
	log.SetOutput(os.Stderr)

	port := flag.String("port", config.GetEnvOrDefault("PORT", "8080"), "HTTP API port")
	cronSchedule := flag.String("cron", config.GetEnvOrDefault("CYCLE_CRON", "*/15 * * * *"), "Cron schedule for signal cycles")
	dbPath := flag.String("db", config.GetEnvOrDefault("DB_PATH", "signals.db"), "Path to the sqlite database")
	runNow := flag.Bool("run-now", false, "Run one signal cycle at startup")
	flag.Parse()

	signalStore, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open signal store: %v", err)
	}
	log.Printf("Signal store ready at %s", *dbPath)

	producer := initProducer()
	seen := initSeenFilter()

	cfg := orchestrator.Config{
		NewsQuery:  config.GetEnvOrDefault("NEWS_QUERY", "marketing"),
		NewsAPIKey: os.Getenv("NEWS_API_KEY"),
		Community:  config.GetEnvOrDefault("SOCIAL_COMMUNITY", "marketing"),
		Feeds:      splitFeeds(os.Getenv("RSS_FEEDS")),
		Enrich:     strings.EqualFold(os.Getenv("ENRICH_CONTENT"), "true"),
	}
	if cfg.NewsAPIKey == "" {
		log.Println("NEWS_API_KEY not set; news source disabled")
	}

	var pub orchestrator.EnvelopePublisher
	if producer != nil {
		pub = producer
	}
	var seenFilter orchestrator.SeenFilter
	if seen != nil {
		seenFilter = seen
	}
	pipeline := orchestrator.NewPipeline(cfg, signalStore, pub, seenFilter)

	consumer := initAgentConsumer(signalStore)

	if *runNow {
		if _, err := pipeline.RunOnce(context.Background()); err != nil {
			log.Printf("Startup cycle failed: %v", err)
		}
	}

	// Schedule periodic cycles
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(*cronSchedule, func() {
		if _, err := pipeline.RunOnce(context.Background()); err != nil {
			log.Printf("Scheduled cycle skipped: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule cycles: %v", err)
	}
	scheduler.Start()
	log.Printf("Signal cycles scheduled: %s", *cronSchedule)

	r := api.NewRouter(pipeline, signalStore)
	log.Printf("Starting API server on :%s", *port)
	log.Println("API endpoints available:")
	log.Println("  GET  /api/health")
	log.Println("  GET  /api/signals")
	log.Println("  GET  /api/signals/stats")
	log.Println("  POST /api/signals")
	log.Println("  POST /api/pipeline/run")

	srv := &http.Server{Addr: ":" + *port, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	scheduler.Stop()
	_ = srv.Shutdown(context.Background())
	if consumer != nil {
		_ = consumer.Close()
	}
	if producer != nil {
		_ = producer.Close()
	}
	if seen != nil {
		_ = seen.Close()
	}
}

// initProducer creates the Kafka producer when brokers are configured
func initProducer() *queue.Producer {
	brokers := os.Getenv("KAFKA_BOOTSTRAP_SERVERS")
	if brokers == "" {
		log.Println("KAFKA_BOOTSTRAP_SERVERS not set; agent queue disabled")
		return nil
	}

	producer, err := queue.NewProducer(queue.ProducerConfig{
		Brokers: strings.Split(brokers, ","),
		Topic:   os.Getenv("KAFKA_TOPIC"),
	})
	if err != nil {
		log.Printf("Warning: failed to init Kafka producer: %v (agent queue disabled)", err)
		return nil
	}
	return producer
}

// initSeenFilter creates the Redis bloom filter when Redis is configured
func initSeenFilter() *dedup.SignalBloom {
	if os.Getenv("REDIS_ADDR") == "" {
		log.Println("REDIS_ADDR not set; cross-cycle dedup disabled")
		return nil
	}

	seen, err := dedup.NewSignalBloomFromEnv()
	if err != nil {
		log.Printf("Warning: failed to init dedup filter: %v (dedup disabled)", err)
		return nil
	}
	return seen
}

// initAgentConsumer starts the in-process agent worker when enabled
func initAgentConsumer(signalStore *store.Store) *queue.Consumer {
	if !strings.EqualFold(os.Getenv("AGENTS_ENABLED"), "true") {
		return nil
	}
	brokers := os.Getenv("KAFKA_BOOTSTRAP_SERVERS")
	if brokers == "" {
		log.Println("AGENTS_ENABLED set but KAFKA_BOOTSTRAP_SERVERS missing; agent worker disabled")
		return nil
	}

	consumer, err := queue.NewConsumer(queue.ConsumerConfig{
		Brokers: strings.Split(brokers, ","),
		Topic:   os.Getenv("KAFKA_TOPIC"),
		GroupID: config.GetEnvOrDefault("KAFKA_GROUP_ID", "aibc-agents"),
		Handler: agents.NewRunner(signalStore),
	})
	if err != nil {
		log.Printf("Warning: failed to create agent consumer: %v", err)
		return nil
	}
	if err := consumer.Start(context.Background()); err != nil {
		log.Printf("Warning: failed to start agent consumer: %v", err)
		return nil
	}
	return consumer
}

// splitFeeds parses the comma-separated RSS_FEEDS value
func splitFeeds(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	feeds := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			feeds = append(feeds, p)
		}
	}
	return feeds
}
