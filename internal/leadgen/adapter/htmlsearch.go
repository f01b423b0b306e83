package adapter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"leadscout/internal/infra/httpclient"
	"leadscout/internal/leadgen/domain"
	"leadscout/internal/leadgen/health"
	"leadscout/internal/leadgen/urlkit"
	"leadscout/internal/resilience/circuitbreaker"
	"leadscout/internal/resilience/retry"
)

// HTMLSearchAdapter scrapes one search engine's results page for a given
// query. It generalizes WebflowScraper's CSS-selector extraction (parse
// HTML with goquery, pull items out by a configured selector, resolve
// relative hrefs) from "one fixed site" to "one search engine, query
// templated in per job."
type HTMLSearchAdapter struct {
	provider       htmlProvider
	client         *httpclient.Client
	recorder       health.Recorder
	enabled        bool
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewHTMLSearchAdapters builds one HTMLSearchAdapter per known search
// engine. disabled lists provider names (by htmlProvider.name) the caller
// wants excluded, e.g. from LEADGEN_DISABLED_HTML_ENGINES.
func NewHTMLSearchAdapters(client *httpclient.Client, recorder health.Recorder, disabled map[string]bool) []SourceAdapter {
	providers := htmlProviders()
	out := make([]SourceAdapter, 0, len(providers))
	for _, p := range providers {
		out = append(out, newHTMLSearchAdapter(p, client, recorder, !disabled[p.name]))
	}
	return out
}

func newHTMLSearchAdapter(p htmlProvider, client *httpclient.Client, recorder health.Recorder, enabled bool) *HTMLSearchAdapter {
	return &HTMLSearchAdapter{
		provider:       p,
		client:         client,
		recorder:       recorder,
		enabled:        enabled,
		circuitBreaker: circuitbreaker.New(circuitbreaker.AdapterConfig("html_search:" + p.name)),
		retryConfig:    retry.WebScraperConfig(),
	}
}

func (a *HTMLSearchAdapter) Name() string { return "html_search:" + a.provider.name }

func (a *HTMLSearchAdapter) Enabled() bool { return a.enabled }

func (a *HTMLSearchAdapter) Quota(maxResults int) int { return maxResults }

func (a *HTMLSearchAdapter) Search(ctx context.Context, keywords []string, maxResults int) ([]domain.RawHit, error) {
	query := joinKeywords(keywords)
	queryURL := a.provider.queryURL(query)

	start := time.Now()
	body, err := a.fetch(ctx, queryURL)
	if err != nil {
		a.recorder.RecordFailure(a.Name(), time.Since(start), health.ClassOther, err)
		return nil, fmt.Errorf("%s: %w", a.Name(), err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		a.recorder.RecordFailure(a.Name(), time.Since(start), health.ClassOther, err)
		return nil, fmt.Errorf("%s: parse html: %w", a.Name(), err)
	}

	hits := a.extract(doc, queryURL, keywords, maxResults)
	a.recorder.RecordSuccess(a.Name(), time.Since(start), len(hits))
	return hits, nil
}

func (a *HTMLSearchAdapter) fetch(ctx context.Context, queryURL string) ([]byte, error) {
	var body []byte
	retryErr := retry.WithBackoff(ctx, a.retryConfig, func() error {
		result, err := a.circuitBreaker.Execute(func() (interface{}, error) {
			return a.doFetch(ctx, queryURL)
		})
		if err != nil {
			if gobreakerOpen(err) {
				slog.Warn("html search adapter circuit breaker open", slog.String("engine", a.Name()))
			}
			return err
		}
		body = result.([]byte)
		return nil
	})
	return body, retryErr
}

func (a *HTMLSearchAdapter) doFetch(ctx context.Context, queryURL string) ([]byte, error) {
	body, _, err := a.client.Get(ctx, queryURL)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// genericBusinessTerms lets the relevance filter keep plausible business
// stories whose snippet happens not to repeat the literal keywords.
var genericBusinessTerms = []string{
	"hotel", "development", "construction", "project", "company",
	"business", "investment", "expansion", "announce", "opens",
}

func (a *HTMLSearchAdapter) extract(doc *goquery.Document, queryURL string, keywords []string, maxResults int) []domain.RawHit {
	var hits []domain.RawHit
	doc.Find(a.provider.itemSelector).EachWithBreak(func(i int, item *goquery.Selection) bool {
		if len(hits) >= maxResults {
			return false
		}

		title := strings.TrimSpace(item.Find(a.provider.titleSelector).First().Text())
		if title == "" {
			return true
		}

		href, _ := item.Find(a.provider.urlSelector).First().Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return true
		}
		if a.provider.unwrapRedirect != nil {
			href = a.provider.unwrapRedirect(href)
		}
		href = resolveRelative(href, queryURL)
		if !urlkit.IsArticleURL(href) {
			return true
		}

		snippet := ""
		if a.provider.snippetSelector != "" {
			snippet = strings.TrimSpace(item.Find(a.provider.snippetSelector).First().Text())
		}

		combined := title + " " + snippet
		if !matchesAnyKeyword(combined, keywords) && !matchesAnyKeyword(combined, genericBusinessTerms) {
			return true
		}

		hits = append(hits, domain.RawHit{
			Source:      a.Name(),
			Engine:      a.Name(),
			URL:         href,
			URLVerified: true,
			Title:       title,
			Snippet:     snippet,
			PublishedAt: time.Now(),
		})
		return true
	})
	return hits
}

// FallbackSearch is the last-resort pass the dispatcher runs when every
// adapter came back empty: instead of the provider's tuned selectors it
// accepts any anchor whose visible text looks like a headline (10-200
// chars) and whose href survives the article-URL filter.
func (a *HTMLSearchAdapter) FallbackSearch(ctx context.Context, keywords []string, maxResults int) ([]domain.RawHit, error) {
	query := joinKeywords(keywords)
	queryURL := a.provider.queryURL(query)

	body, err := a.fetch(ctx, queryURL)
	if err != nil {
		return nil, fmt.Errorf("%s: fallback: %w", a.Name(), err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: fallback: parse html: %w", a.Name(), err)
	}

	var hits []domain.RawHit
	doc.Find("a").EachWithBreak(func(i int, link *goquery.Selection) bool {
		if len(hits) >= maxResults {
			return false
		}
		text := strings.TrimSpace(link.Text())
		if len(text) < 10 || len(text) > 200 {
			return true
		}
		href, _ := link.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return true
		}
		if a.provider.unwrapRedirect != nil {
			href = a.provider.unwrapRedirect(href)
		}
		href = resolveRelative(href, queryURL)
		if !urlkit.IsArticleURL(href) {
			return true
		}
		hits = append(hits, domain.RawHit{
			Source:      a.Name(),
			Engine:      a.Name(),
			URL:         href,
			URLVerified: true,
			Title:       text,
			PublishedAt: time.Now(),
		})
		return true
	})
	return hits, nil
}

// resolveRelative makes a possibly-relative href absolute against base,
// mirroring makeAbsoluteURL's behavior for webflow sites.
func resolveRelative(href, base string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	normalized := urlkit.Normalize(base)
	if normalized == "" {
		return href
	}
	domainPart := urlkit.ExtractDomain(normalized)
	if domainPart == "" {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return "https://" + domainPart + href
	}
	return href
}
