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

const crunchbaseEndpoint = "https://api.crunchbase.com/api/v4/autocompletes"

// CrunchbaseAdapter searches Crunchbase's organization registry. Hits
// point at the organization's Crunchbase profile rather than a news
// article, so downstream enrichment usually finds a company description
// instead of article prose.
type CrunchbaseAdapter struct {
	*keyedAPIAdapter
}

func NewCrunchbase(apiKey string, client *httpclient.Client, recorder health.Recorder) *CrunchbaseAdapter {
	return &CrunchbaseAdapter{
		keyedAPIAdapter: newKeyedAPIAdapter("crunchbase", apiKey, client, recorder,
			map[string]string{"X-cb-user-key": apiKey}),
	}
}

func (a *CrunchbaseAdapter) Name() string { return a.name }

func (a *CrunchbaseAdapter) Enabled() bool { return a.enabled() }

func (a *CrunchbaseAdapter) Quota(maxResults int) int {
	if maxResults > 25 {
		return 25
	}
	return maxResults
}

type crunchbaseResponse struct {
	Entities []struct {
		Identifier struct {
			Value     string `json:"value"`
			Permalink string `json:"permalink"`
		} `json:"identifier"`
		ShortDescription string `json:"short_description"`
	} `json:"entities"`
}

func (a *CrunchbaseAdapter) Search(ctx context.Context, keywords []string, maxResults int) ([]domain.RawHit, error) {
	q := url.Values{}
	q.Set("query", joinKeywords(keywords))
	q.Set("collection_ids", "organizations")
	q.Set("limit", fmt.Sprint(a.Quota(maxResults)))

	body, err := a.get(ctx, crunchbaseEndpoint+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("crunchbase: %w", err)
	}

	var parsed crunchbaseResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("crunchbase: decode response: %w", err)
	}

	hits := make([]domain.RawHit, 0, len(parsed.Entities))
	for _, entity := range parsed.Entities {
		if len(hits) >= maxResults {
			break
		}
		if entity.Identifier.Value == "" || entity.Identifier.Permalink == "" {
			continue
		}
		hits = append(hits, domain.RawHit{
			Source:      "Crunchbase",
			Engine:      a.name,
			APISource:   "crunchbase.com",
			URL:         "https://www.crunchbase.com/organization/" + entity.Identifier.Permalink,
			URLVerified: true,
			Title:       entity.Identifier.Value,
			Snippet:     entity.ShortDescription,
			PublishedAt: time.Now(),
		})
	}
	return hits, nil
}
