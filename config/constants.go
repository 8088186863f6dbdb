package config

import "time"

// Ingestion Constants
const (
	// FetchTimeout bounds every outbound source request
	FetchTimeout = 10 * time.Second

	// NewsConfidence is the fixed confidence assigned to news search results
	NewsConfidence = 0.75

	// RSSConfidence is the fixed confidence assigned to RSS feed items
	RSSConfidence = 0.7

	// ManualConfidence is the default confidence for operator-submitted signals
	ManualConfidence = 0.8

	// MinSocialScore is the engagement floor: posts must exceed this score
	// to be considered at all
	MinSocialScore = 10

	// SocialListingLimit is the number of posts requested from the hot listing
	SocialListingLimit = 25
)

// Scoring Constants
const (
	// BaseConfidence is the starting confidence for scored social posts
	BaseConfidence = 0.5

	// MaxConfidence caps scored confidence below certainty
	MaxConfidence = 0.95

	// MinConfidence is the global filter threshold; signals below it are dropped
	MinConfidence = 0.6
)

// Enrichment Constants
const (
	// EnrichWorkerCount is the worker pool size for full-text extraction
	EnrichWorkerCount = 5

	// EnrichTimeout bounds a single full-text extraction request
	EnrichTimeout = 30 * time.Second
)
