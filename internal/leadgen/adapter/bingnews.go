package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"leadscout/internal/infra/httpclient"
	"leadscout/internal/leadgen/domain"
	"leadscout/internal/leadgen/health"
)

const bingNewsEndpoint = "https://api.bing.microsoft.com/v7.0/news/search"

// BingNewsAdapter queries the Bing News Search API. Enabled only when
// BING_NEWS_KEY is configured; the key travels in a subscription header
// rather than the query string.
type BingNewsAdapter struct {
	*keyedAPIAdapter
}

func NewBingNews(apiKey string, client *httpclient.Client, recorder health.Recorder) *BingNewsAdapter {
	return &BingNewsAdapter{
		keyedAPIAdapter: newKeyedAPIAdapter("bing_news_api", apiKey, client, recorder,
			map[string]string{"Ocp-Apim-Subscription-Key": apiKey}),
	}
}

func (a *BingNewsAdapter) Name() string { return a.name }

func (a *BingNewsAdapter) Enabled() bool { return a.enabled() }

func (a *BingNewsAdapter) Quota(maxResults int) int {
	if maxResults > 50 {
		return 50
	}
	return maxResults
}

type bingNewsResponse struct {
	Value []struct {
		Name          string `json:"name"`
		URL           string `json:"url"`
		Description   string `json:"description"`
		DatePublished string `json:"datePublished"`
		Provider      []struct {
			Name string `json:"name"`
		} `json:"provider"`
		Image struct {
			Thumbnail struct {
				ContentURL string `json:"contentUrl"`
			} `json:"thumbnail"`
		} `json:"image"`
	} `json:"value"`
}

func (a *BingNewsAdapter) Search(ctx context.Context, keywords []string, maxResults int) ([]domain.RawHit, error) {
	q := url.Values{}
	q.Set("q", joinKeywords(keywords))
	q.Set("count", fmt.Sprint(a.Quota(maxResults)))
	q.Set("freshness", "Month")

	body, err := a.get(ctx, bingNewsEndpoint+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("bing_news_api: %w", err)
	}

	var parsed bingNewsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("bing_news_api: decode response: %w", err)
	}

	hits := make([]domain.RawHit, 0, len(parsed.Value))
	for _, item := range parsed.Value {
		if len(hits) >= maxResults {
			break
		}
		source := "Bing News"
		if len(item.Provider) > 0 && item.Provider[0].Name != "" {
			source = item.Provider[0].Name
		}
		publishedAt := time.Now()
		if t, err := time.Parse(time.RFC3339, item.DatePublished); err == nil {
			publishedAt = t
		}
		hits = append(hits, domain.RawHit{
			Source:      source,
			Engine:      a.name,
			APISource:   "bing.microsoft.com",
			URL:         item.URL,
			URLVerified: item.URL != "",
			Title:       item.Name,
			Snippet:     item.Description,
			ImageURL:    item.Image.Thumbnail.ContentURL,
			PublishedAt: publishedAt,
		})
	}
	return hits, nil
}
