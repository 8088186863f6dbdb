package classify

import (
	"strings"

	"aibc/config"
	"aibc/types"
)

// categoryKeywords pairs a category with its keyword list. Order matters:
// the first matching category wins, so competitor and regulatory signals
// take precedence over the broader buckets.
type categoryKeywords struct {
	category types.Category
	keywords []string
}

// Hand-tuned keyword lists. Matching is lowercase substring containment
// over the concatenated title and content.
var orderedKeywords = []categoryKeywords{
	{types.CategoryCompetitor, []string{
		"competitor", "rival", "competing", "market share", "alternative to", "switched from",
	}},
	{types.CategoryRegulatory, []string{
		"regulation", "regulatory", "compliance", "lawsuit", "legislation", "ftc", "gdpr", "privacy law",
	}},
	{types.CategoryViral, []string{
		"viral", "meme", "trending", "blew up", "million views",
	}},
	{types.CategoryCultural, []string{
		"culture", "cultural", "gen z", "millennial", "zeitgeist", "movement",
	}},
	{types.CategoryPlatform, []string{
		"platform", "algorithm", "api change", "feature update", "tiktok", "instagram", "youtube",
	}},
}

// Classify derives a category from signal text. The first category whose
// keyword list matches wins; unmatched text falls back to market, which is
// itself a valid signal bucket rather than an error case.
func Classify(title, content string) types.Category {
	text := strings.ToLower(title + " " + content)

	for _, ck := range orderedKeywords {
		for _, kw := range ck.keywords {
			if strings.Contains(text, kw) {
				return ck.category
			}
		}
	}

	return types.CategoryMarket
}

// EngagementMetrics holds the raw counters used to score a social post
type EngagementMetrics struct {
	Score         int
	NumComments   int
	ApprovalRatio float64
}

// ScoreEngagement computes confidence for a social post. Scoring is
// threshold-additive: each strictly exceeded threshold adds a fixed
// increment to the base, capped below certainty.
func ScoreEngagement(m EngagementMetrics) float64 {
	confidence := config.BaseConfidence

	if m.Score > 100 {
		confidence += 0.15
	}
	if m.Score > 500 {
		confidence += 0.10
	}
	if m.NumComments > 50 {
		confidence += 0.10
	}
	if m.ApprovalRatio > 0.8 {
		confidence += 0.10
	}

	if confidence > config.MaxConfidence {
		confidence = config.MaxConfidence
	}
	return types.ClampConfidence(confidence)
}
