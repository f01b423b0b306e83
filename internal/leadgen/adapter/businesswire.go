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

const businessWireEndpoint = "https://api.businesswire.com/v1/releases"

// BusinessWireAdapter searches Business Wire's press release archive.
// Press releases are a strong lead signal: they name the company, the
// project, and usually a media contact in the footer.
type BusinessWireAdapter struct {
	*keyedAPIAdapter
}

func NewBusinessWire(apiKey string, client *httpclient.Client, recorder health.Recorder) *BusinessWireAdapter {
	return &BusinessWireAdapter{
		keyedAPIAdapter: newKeyedAPIAdapter("business_wire", apiKey, client, recorder,
			map[string]string{"Authorization": "Bearer " + apiKey}),
	}
}

func (a *BusinessWireAdapter) Name() string { return a.name }

func (a *BusinessWireAdapter) Enabled() bool { return a.enabled() }

func (a *BusinessWireAdapter) Quota(maxResults int) int {
	if maxResults > 50 {
		return 50
	}
	return maxResults
}

type businessWireResponse struct {
	Releases []struct {
		Headline    string `json:"headline"`
		URL         string `json:"url"`
		Summary     string `json:"summary"`
		PublishedAt string `json:"published_at"`
		Company     string `json:"company"`
	} `json:"releases"`
}

func (a *BusinessWireAdapter) Search(ctx context.Context, keywords []string, maxResults int) ([]domain.RawHit, error) {
	q := url.Values{}
	q.Set("query", joinKeywords(keywords))
	q.Set("limit", fmt.Sprint(a.Quota(maxResults)))

	body, err := a.get(ctx, businessWireEndpoint+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("business_wire: %w", err)
	}

	var parsed businessWireResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("business_wire: decode response: %w", err)
	}

	hits := make([]domain.RawHit, 0, len(parsed.Releases))
	for _, release := range parsed.Releases {
		if len(hits) >= maxResults {
			break
		}
		publishedAt := time.Now()
		if t, err := time.Parse(time.RFC3339, release.PublishedAt); err == nil {
			publishedAt = t
		}
		hits = append(hits, domain.RawHit{
			Source:      "Business Wire",
			Engine:      a.name,
			APISource:   "businesswire.com",
			URL:         release.URL,
			URLVerified: release.URL != "",
			Title:       release.Headline,
			Snippet:     release.Summary,
			Author:      release.Company,
			PublishedAt: publishedAt,
		})
	}
	return hits, nil
}
