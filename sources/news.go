package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"aibc/classify"
	"aibc/config"
	"aibc/types"
)

// newsBaseURL is a var so tests can point the fetcher at a local server
var newsBaseURL = "https://newsdata.io/api/1/news"

var httpClient = &http.Client{Timeout: config.FetchTimeout}

// newsResponse mirrors the search endpoint's JSON envelope. A response
// without a results collection decodes to a nil slice and is treated as empty.
type newsResponse struct {
	Status  string       `json:"status"`
	Results []newsResult `json:"results"`
}

type newsResult struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Link        string   `json:"link"`
	PubDate     string   `json:"pubDate"`
	Creator     []string `json:"creator"`
	SourceID    string   `json:"source_id"`
}

// FetchNews issues a single search request for the query and maps each
// article into a signal with fixed confidence. Fetch failures never
// propagate: the returned Result carries the error for logging and an
// empty signal list, so one flaky source cannot halt a cycle.
func FetchNews(ctx context.Context, query, apiKey string) Result {
	res := Result{Source: types.SourceNews, Name: "news"}

	endpoint := fmt.Sprintf("%s?apikey=%s&q=%s&language=en",
		newsBaseURL, url.QueryEscape(apiKey), url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		res.Err = fmt.Errorf("news request: %w", err)
		return res
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		res.Err = fmt.Errorf("news fetch: %w", err)
		return res
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		res.Err = fmt.Errorf("news fetch: unexpected status %d", resp.StatusCode)
		return res
	}

	var body newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		res.Err = fmt.Errorf("news fetch: decode response: %w", err)
		return res
	}

	signals := make([]types.Signal, 0, len(body.Results))
	for i, item := range body.Results {
		createdAt := parseNewsDate(item.PubDate)

		creator := ""
		if len(item.Creator) > 0 {
			creator = item.Creator[0]
		}

		signals = append(signals, types.Signal{
			ID:         fmt.Sprintf("news-%d", i),
			Source:     types.SourceNews,
			Category:   classify.Classify(item.Title, item.Description),
			Title:      item.Title,
			Content:    item.Description,
			URL:        item.Link,
			Confidence: config.NewsConfidence,
			Metadata: map[string]interface{}{
				"published_at": item.PubDate,
				"creator":      creator,
				"source_id":    item.SourceID,
			},
			CreatedAt: createdAt,
		})
	}

	res.Signals = signals
	return res
}

// parseNewsDate parses the endpoint's "2006-01-02 15:04:05" timestamps,
// falling back to ingestion time
func parseNewsDate(raw string) time.Time {
	if raw != "" {
		if t, err := time.Parse("2006-01-02 15:04:05", raw); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}
	return time.Now()
}
