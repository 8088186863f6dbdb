package sources

import (
	"context"
	"fmt"
	"time"

	"aibc/classify"
	"aibc/config"
	"aibc/types"

	"github.com/mmcdole/gofeed"
)

// FeedPresets maps friendly names to brand and industry RSS feed URLs
var FeedPresets = map[string]string{
	"marketingweek": "https://www.marketingweek.com/feed/",
	"adage":         "https://adage.com/rss.xml",
	"socialtoday":   "https://www.socialmediatoday.com/feeds/news/",
	"hn":            "https://hnrss.org/newest",
}

// ResolveFeedURL resolves a feed identifier to a URL. Preset names map to
// their configured URL; anything else is assumed to be a direct URL.
func ResolveFeedURL(feedInput string) string {
	if url, exists := FeedPresets[feedInput]; exists {
		return url
	}
	return feedInput
}

// FetchRSS retrieves a feed and maps up to maxCount items into news signals
// with fixed confidence. Same fail-soft contract as the other fetchers.
func FetchRSS(ctx context.Context, feedInput string, maxCount int) Result {
	res := Result{Source: types.SourceNews, Name: "rss:" + feedInput}

	feedURL := ResolveFeedURL(feedInput)

	parser := gofeed.NewParser()
	parser.UserAgent = socialUserAgent

	fetchCtx, cancel := context.WithTimeout(ctx, config.FetchTimeout)
	defer cancel()

	feed, err := parser.ParseURLWithContext(feedURL, fetchCtx)
	if err != nil {
		res.Err = fmt.Errorf("rss fetch: %w", err)
		return res
	}

	count := min(len(feed.Items), maxCount)
	signals := make([]types.Signal, 0, count)

	for i := 0; i < count; i++ {
		item := feed.Items[i]

		var createdAt time.Time
		if item.PublishedParsed != nil {
			createdAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			createdAt = *item.UpdatedParsed
		} else {
			createdAt = time.Now()
		}

		author := ""
		if item.Author != nil {
			author = item.Author.Name
		}

		signals = append(signals, types.Signal{
			ID:         fmt.Sprintf("rss-%d", i),
			Source:     types.SourceNews,
			Category:   classify.Classify(item.Title, item.Description),
			Title:      item.Title,
			Content:    item.Description,
			URL:        item.Link,
			Confidence: config.RSSConfidence,
			Metadata: map[string]interface{}{
				"feed":   feedURL,
				"author": author,
				"guid":   item.GUID,
			},
			CreatedAt: createdAt,
		})
	}

	res.Signals = signals
	return res
}
