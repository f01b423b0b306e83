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

const newsAPIEndpoint = "https://newsapi.org/v2/everything"

// NewsAPIAdapter queries NewsAPI.org's "everything" endpoint. Enabled only
// when NEWS_API_KEY is configured.
type NewsAPIAdapter struct {
	*keyedAPIAdapter
}

func NewNewsAPI(apiKey string, client *httpclient.Client, recorder health.Recorder) *NewsAPIAdapter {
	return &NewsAPIAdapter{
		keyedAPIAdapter: newKeyedAPIAdapter("news_api", apiKey, client, recorder, nil),
	}
}

func (a *NewsAPIAdapter) Name() string { return a.name }

func (a *NewsAPIAdapter) Enabled() bool { return a.enabled() }

func (a *NewsAPIAdapter) Quota(maxResults int) int {
	// The free tier caps pageSize at 100; stay well under it.
	if maxResults > 50 {
		return 50
	}
	return maxResults
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Author      string `json:"author"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		URLToImage  string `json:"urlToImage"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

func (a *NewsAPIAdapter) Search(ctx context.Context, keywords []string, maxResults int) ([]domain.RawHit, error) {
	q := url.Values{}
	q.Set("q", joinKeywords(keywords))
	q.Set("pageSize", fmt.Sprint(a.Quota(maxResults)))
	q.Set("sortBy", "publishedAt")
	q.Set("apiKey", a.apiKey)

	body, err := a.get(ctx, newsAPIEndpoint+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("news_api: %w", err)
	}

	var parsed newsAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("news_api: decode response: %w", err)
	}

	hits := make([]domain.RawHit, 0, len(parsed.Articles))
	for _, art := range parsed.Articles {
		if len(hits) >= maxResults {
			break
		}
		publishedAt := time.Now()
		if t, err := time.Parse(time.RFC3339, art.PublishedAt); err == nil {
			publishedAt = t
		}
		hits = append(hits, domain.RawHit{
			Source:      art.Source.Name,
			Engine:      a.name,
			APISource:   "newsapi.org",
			URL:         art.URL,
			URLVerified: art.URL != "",
			Title:       art.Title,
			Snippet:     art.Description,
			Author:      art.Author,
			ImageURL:    art.URLToImage,
			PublishedAt: publishedAt,
		})
	}
	return hits, nil
}
