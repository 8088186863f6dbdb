package dedup

import (
	"testing"

	"aibc/types"
)

func TestNormalizeTitleAndURL(t *testing.T) {
	cases := []struct {
		name          string
		url           string
		title         string
		wantNormURL   string
		wantNormTitle string
	}{
		{"simple", "https://example.com/path", "Hello World", "https://example.com/path", "hello world"},
		{"utm and fragment", "https://example.com/path?utm_source=feed#section", "  Hello   World  ", "https://example.com/path", "hello world"},
		{"uppercase host", "HTTP://Example.COM/", "TiTle", "http://example.com", "title"},
		{"tracking params", "https://example.com/?fbclid=XYZ&gclid=ABC&utm_medium=1", "T", "https://example.com", "t"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if nu := normalizeURL(c.url); nu != c.wantNormURL {
				t.Fatalf("normalizeURL(%q) = %q; want %q", c.url, nu, c.wantNormURL)
			}
			if nt := normalizeTitle(c.title); nt != c.wantNormTitle {
				t.Fatalf("normalizeTitle(%q) = %q; want %q", c.title, nt, c.wantNormTitle)
			}
		})
	}
}

func TestSignalHashStable(t *testing.T) {
	a := types.Signal{ID: "news-0", Title: "Big Launch", URL: "https://example.com/story?utm_source=rss"}
	b := types.Signal{ID: "news-7", Title: "  big   launch ", URL: "https://EXAMPLE.com/story"}

	if SignalHash(a) == "" {
		t.Fatal("SignalHash returned empty hash")
	}
	// Batch-scoped IDs repeat across cycles, so the hash must ignore them
	// and normalize away syndication noise
	if SignalHash(a) != SignalHash(b) {
		t.Fatalf("equivalent signals hashed differently: %q vs %q", SignalHash(a), SignalHash(b))
	}

	c := types.Signal{Title: "Different Story", URL: "https://example.com/other"}
	if SignalHash(a) == SignalHash(c) {
		t.Fatal("distinct signals produced the same hash")
	}
}
