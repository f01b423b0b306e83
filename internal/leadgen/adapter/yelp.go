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

const yelpEndpoint = "https://api.yelp.com/v3/businesses/search"

// YelpAdapter searches Yelp's business directory. Yelp requires a
// location; when the job didn't configure one the adapter searches
// nationwide, which Yelp treats as a popularity-ranked sample.
type YelpAdapter struct {
	*keyedAPIAdapter
	location string
}

func NewYelp(apiKey, location string, client *httpclient.Client, recorder health.Recorder) *YelpAdapter {
	if location == "" {
		location = "United States"
	}
	return &YelpAdapter{
		keyedAPIAdapter: newKeyedAPIAdapter("yelp", apiKey, client, recorder,
			map[string]string{"Authorization": "Bearer " + apiKey}),
		location: location,
	}
}

func (a *YelpAdapter) Name() string { return a.name }

func (a *YelpAdapter) Enabled() bool { return a.enabled() }

func (a *YelpAdapter) Quota(maxResults int) int {
	if maxResults > 20 {
		return 20
	}
	return maxResults
}

type yelpResponse struct {
	Businesses []struct {
		Name     string `json:"name"`
		URL      string `json:"url"`
		ImageURL string `json:"image_url"`
		Phone    string `json:"display_phone"`
		Location struct {
			City  string `json:"city"`
			State string `json:"state"`
		} `json:"location"`
		Categories []struct {
			Title string `json:"title"`
		} `json:"categories"`
	} `json:"businesses"`
}

func (a *YelpAdapter) Search(ctx context.Context, keywords []string, maxResults int) ([]domain.RawHit, error) {
	q := url.Values{}
	q.Set("term", joinKeywords(keywords))
	q.Set("location", a.location)
	q.Set("limit", fmt.Sprint(a.Quota(maxResults)))

	body, err := a.get(ctx, yelpEndpoint+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("yelp: %w", err)
	}

	var parsed yelpResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("yelp: decode response: %w", err)
	}

	hits := make([]domain.RawHit, 0, len(parsed.Businesses))
	for _, biz := range parsed.Businesses {
		if len(hits) >= maxResults {
			break
		}
		snippet := ""
		if len(biz.Categories) > 0 {
			snippet = biz.Categories[0].Title
		}
		if biz.Location.City != "" {
			snippet += " in " + biz.Location.City + ", " + biz.Location.State
		}
		hits = append(hits, domain.RawHit{
			Source:      "Yelp",
			Engine:      a.name,
			APISource:   "yelp.com",
			URL:         biz.URL,
			URLVerified: biz.URL != "",
			Title:       biz.Name,
			Snippet:     snippet,
			PublishedAt: time.Now(),
		})
	}
	return hits, nil
}
