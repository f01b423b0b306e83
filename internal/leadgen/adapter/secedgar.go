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

const secEdgarEndpoint = "https://efts.sec.gov/LATEST/search-index"

// SECEdgarAdapter runs a full-text search over SEC EDGAR filings. EDGAR
// wants a contact identifier in the User-Agent of every automated client;
// the configured key is sent that way rather than as a bearer token.
type SECEdgarAdapter struct {
	*keyedAPIAdapter
}

func NewSECEdgar(apiKey string, client *httpclient.Client, recorder health.Recorder) *SECEdgarAdapter {
	return &SECEdgarAdapter{
		keyedAPIAdapter: newKeyedAPIAdapter("sec_edgar", apiKey, client, recorder,
			map[string]string{"User-Agent": "LeadScout " + apiKey}),
	}
}

func (a *SECEdgarAdapter) Name() string { return a.name }

func (a *SECEdgarAdapter) Enabled() bool { return a.enabled() }

func (a *SECEdgarAdapter) Quota(maxResults int) int {
	if maxResults > 25 {
		return 25
	}
	return maxResults
}

type secEdgarResponse struct {
	Hits struct {
		Hits []struct {
			ID     string `json:"_id"`
			Source struct {
				DisplayNames []string `json:"display_names"`
				FileDate     string   `json:"file_date"`
				FileType     string   `json:"file_type"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (a *SECEdgarAdapter) Search(ctx context.Context, keywords []string, maxResults int) ([]domain.RawHit, error) {
	q := url.Values{}
	q.Set("q", `"`+joinKeywords(keywords)+`"`)
	q.Set("forms", "8-K,10-K,10-Q")

	body, err := a.get(ctx, secEdgarEndpoint+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("sec_edgar: %w", err)
	}

	var parsed secEdgarResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("sec_edgar: decode response: %w", err)
	}

	hits := make([]domain.RawHit, 0, len(parsed.Hits.Hits))
	for _, filing := range parsed.Hits.Hits {
		if len(hits) >= maxResults {
			break
		}
		company := "SEC Filing"
		if len(filing.Source.DisplayNames) > 0 {
			company = filing.Source.DisplayNames[0]
		}
		publishedAt := time.Now()
		if t, err := time.Parse("2006-01-02", filing.Source.FileDate); err == nil {
			publishedAt = t
		}
		hits = append(hits, domain.RawHit{
			Source:      "SEC EDGAR",
			Engine:      a.name,
			APISource:   "sec.gov",
			URL:         "https://www.sec.gov/Archives/edgar/data/" + filing.ID,
			URLVerified: filing.ID != "",
			Title:       company + " " + filing.Source.FileType,
			PublishedAt: publishedAt,
		})
	}
	return hits, nil
}
