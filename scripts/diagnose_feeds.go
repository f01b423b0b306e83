// Command diagnose_feeds probes every RSS feed the pipeline is configured
// with (LEADGEN_RSS_FEEDS) and reports reachability, item counts, and
// freshness as JSON. Run it when the rss adapter's yield drops to tell
// dead feeds apart from keyword filters that got too strict.
//
// Usage:
//
//	LEADGEN_RSS_FEEDS="https://a.tld/feed,https://b.tld/rss" go run scripts/diagnose_feeds.go
package main

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// FeedDiagnostic represents the diagnostic result for a single feed
type FeedDiagnostic struct {
	URL          string `json:"url"`
	Status       string `json:"status"` // "OK", "HTTP_ERROR", "PARSE_ERROR", "EMPTY", "TIMEOUT"
	HTTPCode     int    `json:"http_code"`
	ItemCount    int    `json:"item_count"`
	LatestDate   string `json:"latest_date,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	FeedType     string `json:"feed_type"` // "RSS", "ATOM", "UNKNOWN"
	ResponseTime int64  `json:"response_time_ms"`
}

type rssDoc struct {
	Channel struct {
		Items []struct {
			PubDate string `xml:"pubDate"`
		} `xml:"item"`
	} `xml:"channel"`
}

type atomDoc struct {
	Entries []struct {
		Updated string `xml:"updated"`
	} `xml:"entry"`
}

func main() {
	raw := os.Getenv("LEADGEN_RSS_FEEDS")
	if raw == "" {
		log.Fatal("LEADGEN_RSS_FEEDS is not set")
	}

	var feeds []string
	for _, f := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			feeds = append(feeds, trimmed)
		}
	}
	log.Printf("Diagnosing %d feed sources...\n", len(feeds))

	client := &http.Client{Timeout: 15 * time.Second}
	diagnostics := make([]FeedDiagnostic, 0, len(feeds))
	for _, feedURL := range feeds {
		diagnostics = append(diagnostics, diagnose(client, feedURL))
	}

	out, err := json.MarshalIndent(diagnostics, "", "  ")
	if err != nil {
		log.Fatalf("marshal results: %v", err)
	}
	fmt.Println(string(out))

	ok := 0
	for _, d := range diagnostics {
		if d.Status == "OK" {
			ok++
		}
	}
	log.Printf("%d/%d feeds healthy", ok, len(diagnostics))
}

func diagnose(client *http.Client, feedURL string) FeedDiagnostic {
	d := FeedDiagnostic{URL: feedURL, FeedType: "UNKNOWN"}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		d.Status = "HTTP_ERROR"
		d.ErrorMessage = err.Error()
		return d
	}
	req.Header.Set("User-Agent", "LeadScoutBot/1.0 (feed diagnostics)")

	start := time.Now()
	resp, err := client.Do(req)
	d.ResponseTime = time.Since(start).Milliseconds()
	if err != nil {
		if ctx.Err() != nil {
			d.Status = "TIMEOUT"
		} else {
			d.Status = "HTTP_ERROR"
		}
		d.ErrorMessage = err.Error()
		return d
	}
	defer func() { _ = resp.Body.Close() }()

	d.HTTPCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		d.Status = "HTTP_ERROR"
		d.ErrorMessage = resp.Status
		return d
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		d.Status = "HTTP_ERROR"
		d.ErrorMessage = err.Error()
		return d
	}

	var rss rssDoc
	if xml.Unmarshal(body, &rss) == nil && len(rss.Channel.Items) > 0 {
		d.FeedType = "RSS"
		d.ItemCount = len(rss.Channel.Items)
		d.LatestDate = rss.Channel.Items[0].PubDate
		d.Status = "OK"
		return d
	}

	var atom atomDoc
	if xml.Unmarshal(body, &atom) == nil && len(atom.Entries) > 0 {
		d.FeedType = "ATOM"
		d.ItemCount = len(atom.Entries)
		d.LatestDate = atom.Entries[0].Updated
		d.Status = "OK"
		return d
	}

	if strings.Contains(string(body), "<rss") || strings.Contains(string(body), "<feed") {
		d.Status = "EMPTY"
		return d
	}
	d.Status = "PARSE_ERROR"
	d.ErrorMessage = "response is neither RSS nor Atom"
	return d
}
