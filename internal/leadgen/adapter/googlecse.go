package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	serpapi "github.com/serpapi/google-search-results-golang"

	"leadscout/internal/infra/httpclient"
	"leadscout/internal/leadgen/domain"
	"leadscout/internal/leadgen/health"
)

const googleCSEEndpoint = "https://www.googleapis.com/customsearch/v1"

// GoogleCSEAdapter queries Google's Custom Search JSON API when both
// GOOGLE_CSE_KEY and GOOGLE_CSE_ID are configured. When only a SerpAPI
// key is present it falls back to SerpAPI's Google engine, which returns
// the same organic results without needing a CSE instance.
type GoogleCSEAdapter struct {
	*keyedAPIAdapter
	cseID      string
	serpAPIKey string
}

func NewGoogleCSE(apiKey, cseID, serpAPIKey string, client *httpclient.Client, recorder health.Recorder) *GoogleCSEAdapter {
	return &GoogleCSEAdapter{
		keyedAPIAdapter: newKeyedAPIAdapter("google_cse", apiKey, client, recorder, nil),
		cseID:           cseID,
		serpAPIKey:      serpAPIKey,
	}
}

func (a *GoogleCSEAdapter) Name() string { return a.name }

func (a *GoogleCSEAdapter) Enabled() bool {
	return (a.apiKey != "" && a.cseID != "") || a.serpAPIKey != ""
}

func (a *GoogleCSEAdapter) Quota(maxResults int) int {
	// The CSE API returns at most 10 results per request.
	if maxResults > 10 {
		return 10
	}
	return maxResults
}

type googleCSEResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

func (a *GoogleCSEAdapter) Search(ctx context.Context, keywords []string, maxResults int) ([]domain.RawHit, error) {
	if a.apiKey == "" || a.cseID == "" {
		return a.searchSerpAPI(ctx, keywords, maxResults)
	}

	q := url.Values{}
	q.Set("key", a.apiKey)
	q.Set("cx", a.cseID)
	q.Set("q", joinKeywords(keywords))
	q.Set("num", fmt.Sprint(a.Quota(maxResults)))

	body, err := a.get(ctx, googleCSEEndpoint+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("google_cse: %w", err)
	}

	var parsed googleCSEResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("google_cse: decode response: %w", err)
	}

	hits := make([]domain.RawHit, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if len(hits) >= maxResults {
			break
		}
		hits = append(hits, domain.RawHit{
			Source:      "Google Custom Search",
			Engine:      a.name,
			APISource:   "googleapis.com",
			URL:         item.Link,
			URLVerified: item.Link != "",
			Title:       item.Title,
			Snippet:     item.Snippet,
			PublishedAt: time.Now(),
		})
	}
	return hits, nil
}

// searchSerpAPI is the keyless-CSE fallback path: same organic results,
// fetched through SerpAPI's hosted Google engine.
func (a *GoogleCSEAdapter) searchSerpAPI(ctx context.Context, keywords []string, maxResults int) ([]domain.RawHit, error) {
	start := time.Now()
	params := map[string]string{
		"engine": "google",
		"q":      joinKeywords(keywords),
		"num":    fmt.Sprint(a.Quota(maxResults)),
	}
	search := serpapi.NewGoogleSearch(params, a.serpAPIKey)
	results, err := search.GetJSON()
	if err != nil {
		a.recorder.RecordFailure(a.name, time.Since(start), health.ClassOther, err)
		return nil, fmt.Errorf("google_cse: serpapi: %w", err)
	}

	organic, _ := results["organic_results"].([]interface{})
	hits := make([]domain.RawHit, 0, len(organic))
	for _, entry := range organic {
		if len(hits) >= maxResults {
			break
		}
		fields, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		title, _ := fields["title"].(string)
		link, _ := fields["link"].(string)
		snippet, _ := fields["snippet"].(string)
		if title == "" || link == "" {
			continue
		}
		hits = append(hits, domain.RawHit{
			Source:      "Google Search",
			Engine:      a.name,
			APISource:   "serpapi.com",
			URL:         link,
			URLVerified: true,
			Title:       title,
			Snippet:     snippet,
			PublishedAt: time.Now(),
		})
	}
	a.recorder.RecordSuccess(a.name, time.Since(start), len(hits))

	select {
	case <-ctx.Done():
		return hits, ctx.Err()
	default:
	}
	return hits, nil
}
