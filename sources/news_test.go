package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aibc/types"
)

func withNewsServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	prev := newsBaseURL
	newsBaseURL = server.URL
	t.Cleanup(func() { newsBaseURL = prev })
}

func TestFetchNewsMapsResults(t *testing.T) {
	withNewsServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "marketing" {
			t.Errorf("query param q = %q; want %q", got, "marketing")
		}
		if got := r.URL.Query().Get("apikey"); got != "test-key" {
			t.Errorf("query param apikey = %q; want %q", got, "test-key")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"results": [
				{
					"title": "Our biggest rival just launched a competing feature",
					"description": "Launch analysis",
					"link": "https://example.com/a",
					"pubDate": "2026-08-27 09:30:00",
					"creator": ["jane"],
					"source_id": "example"
				},
				{
					"title": "Quarterly ad spend trends upward",
					"description": "",
					"link": "https://example.com/b",
					"pubDate": "",
					"creator": null,
					"source_id": "example"
				}
			]
		}`))
	})

	res := FetchNews(context.Background(), "marketing", "test-key")
	if res.Failed() {
		t.Fatalf("FetchNews failed: %v", res.Err)
	}
	if len(res.Signals) != 2 {
		t.Fatalf("got %d signals; want 2", len(res.Signals))
	}

	first := res.Signals[0]
	if first.ID != "news-0" {
		t.Errorf("first signal ID = %q; want news-0", first.ID)
	}
	if first.Source != types.SourceNews {
		t.Errorf("first signal source = %q; want news", first.Source)
	}
	if first.Category != types.CategoryCompetitor {
		t.Errorf("first signal category = %q; want competitor", first.Category)
	}
	if first.Confidence != 0.75 {
		t.Errorf("first signal confidence = %v; want 0.75", first.Confidence)
	}
	wantTime := time.Date(2026, 8, 27, 9, 30, 0, 0, time.UTC)
	if !first.CreatedAt.Equal(wantTime) {
		t.Errorf("first signal createdAt = %v; want %v", first.CreatedAt, wantTime)
	}
	if got := first.Metadata["creator"]; got != "jane" {
		t.Errorf("first signal creator metadata = %v; want jane", got)
	}

	second := res.Signals[1]
	if second.Category != types.CategoryMarket {
		t.Errorf("unclassifiable article category = %q; want market", second.Category)
	}
	if second.Confidence != 0.75 {
		t.Errorf("unclassifiable article confidence = %v; want 0.75", second.Confidence)
	}
	if second.CreatedAt.IsZero() {
		t.Error("missing pubDate should fall back to ingestion time")
	}
}

func TestFetchNewsNoResults(t *testing.T) {
	withNewsServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success"}`))
	})

	res := FetchNews(context.Background(), "marketing", "test-key")
	if res.Failed() {
		t.Fatalf("response without results collection must not fail: %v", res.Err)
	}
	if len(res.Signals) != 0 {
		t.Fatalf("got %d signals; want 0", len(res.Signals))
	}
}

func TestFetchNewsFailSoft(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"rate limited", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"results": [`))
		}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			withNewsServer(t, c.handler)

			res := FetchNews(context.Background(), "marketing", "test-key")
			if !res.Failed() {
				t.Fatal("expected Result.Err to be set")
			}
			if len(res.Signals) != 0 {
				t.Fatalf("failed fetch returned %d signals; want 0", len(res.Signals))
			}
		})
	}
}

func TestFetchNewsUnreachable(t *testing.T) {
	prev := newsBaseURL
	newsBaseURL = "http://127.0.0.1:1"
	t.Cleanup(func() { newsBaseURL = prev })

	res := FetchNews(context.Background(), "marketing", "test-key")
	if !res.Failed() {
		t.Fatal("expected network failure to set Result.Err")
	}
	if len(res.Signals) != 0 {
		t.Fatalf("got %d signals; want 0", len(res.Signals))
	}
}
