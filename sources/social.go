package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"aibc/classify"
	"aibc/config"
	"aibc/types"
)

// socialBaseURL is a var so tests can point the fetcher at a local server
var socialBaseURL = "https://www.reddit.com"

// socialUserAgent identifies the pipeline; the listing endpoint rejects
// requests with a default Go user agent
const socialUserAgent = "aibc-signal-pipeline/1.0"

type socialListing struct {
	Data struct {
		Children []struct {
			Data socialPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type socialPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	CreatedUTC  float64 `json:"created_utc"`
}

// FetchSocial issues a single hot-listing request for the community and maps
// each post into a signal. Posts at or below the engagement floor are dropped
// before normalization; surviving posts get a computed confidence. Same
// fail-soft contract as FetchNews.
func FetchSocial(ctx context.Context, community string) Result {
	res := Result{Source: types.SourceSocial, Name: "social"}

	endpoint := fmt.Sprintf("%s/r/%s/hot.json?limit=%d",
		socialBaseURL, community, config.SocialListingLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		res.Err = fmt.Errorf("social request: %w", err)
		return res
	}
	req.Header.Set("User-Agent", socialUserAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		res.Err = fmt.Errorf("social fetch: %w", err)
		return res
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		res.Err = fmt.Errorf("social fetch: unexpected status %d", resp.StatusCode)
		return res
	}

	var listing socialListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		res.Err = fmt.Errorf("social fetch: decode listing: %w", err)
		return res
	}

	signals := make([]types.Signal, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		post := child.Data
		if post.Score <= config.MinSocialScore {
			continue
		}

		createdAt := time.Now()
		if post.CreatedUTC > 0 {
			createdAt = time.Unix(int64(post.CreatedUTC), 0)
		}

		signals = append(signals, types.Signal{
			ID:       fmt.Sprintf("social-%d", len(signals)),
			Source:   types.SourceSocial,
			Category: classify.Classify(post.Title, post.SelfText),
			Title:    post.Title,
			Content:  post.SelfText,
			URL:      socialBaseURL + post.Permalink,
			Confidence: classify.ScoreEngagement(classify.EngagementMetrics{
				Score:         post.Score,
				NumComments:   post.NumComments,
				ApprovalRatio: post.UpvoteRatio,
			}),
			Metadata: map[string]interface{}{
				"post_id":      post.ID,
				"score":        post.Score,
				"num_comments": post.NumComments,
				"upvote_ratio": post.UpvoteRatio,
				"author":       post.Author,
				"subreddit":    post.Subreddit,
			},
			CreatedAt: createdAt,
		})
	}

	res.Signals = signals
	return res
}
