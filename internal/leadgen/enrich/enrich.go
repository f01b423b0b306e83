// Package enrich fetches the full article body for a RawHit when its
// snippet is too short to extract useful fields from, and cleans it down
// to plain text. It generalizes this codebase's readability-based content
// fetcher (originally built to upgrade an RSS item's summary before
// AI-summarization) to stand on its own as a pipeline stage that never
// fails the caller — on any error the original snippet survives untouched.
package enrich

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"

	"leadscout/internal/infra/httpclient"
	"leadscout/internal/leadgen/domain"
	"leadscout/internal/leadgen/health"
	"leadscout/internal/observability/metrics"
	"leadscout/internal/resilience/circuitbreaker"
	"leadscout/internal/resilience/retry"
)

// snippetThreshold is the length at or below which a hit's snippet is considered
// too thin to extract from, triggering a full-content fetch.
const snippetThreshold = 100

// maxArticleChars caps the cleaned text handed to the extractor.
const maxArticleChars = 10000

var redirectOnlyHosts = []string{
	"news.google.com",
	"bing.com",
}

// Enricher fetches and cleans article bodies.
type Enricher struct {
	client         *httpclient.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	sanitizer      *bluemonday.Policy
	recorder       health.Recorder
}

func New(client *httpclient.Client, recorder health.Recorder) *Enricher {
	return &Enricher{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.Config{
			Name:             "content-enrich",
			MaxRequests:      5,
			Interval:         60 * time.Second,
			Timeout:          60 * time.Second,
			FailureThreshold: 0.6,
			MinRequests:      5,
		}),
		retryConfig: retry.WebScraperConfig(),
		sanitizer:   bluemonday.StrictPolicy(),
		recorder:    recorder,
	}
}

// Enrich attempts to fetch and clean the article body for hit. It never
// returns an error: on any failure the returned EnrichedHit carries the
// original snippet and Enriched=false.
func (e *Enricher) Enrich(ctx context.Context, hit domain.RawHit) domain.EnrichedHit {
	result := domain.EnrichedHit{RawHit: hit}

	if len(hit.Snippet) > snippetThreshold {
		metrics.RecordContentFetchSkipped()
		result.ArticleText = hit.Snippet
		return result
	}
	for _, host := range redirectOnlyHosts {
		if strings.Contains(hit.URL, host) {
			result.ArticleText = hit.Snippet
			return result
		}
	}

	start := time.Now()
	text, err := e.fetchWithResilience(ctx, hit.URL)
	if err != nil {
		metrics.RecordContentFetchFailed(time.Since(start))
		if e.recorder != nil {
			e.recorder.RecordFailure("enrich", time.Since(start), health.ClassOther, err)
		}
		slog.Debug("enrichment failed, keeping original snippet",
			slog.String("url", hit.URL), slog.Any("error", err))
		result.ArticleText = hit.Snippet
		return result
	}
	metrics.RecordContentFetchSuccess(time.Since(start), len(text))
	if e.recorder != nil {
		e.recorder.RecordSuccess("enrich", time.Since(start), 1)
	}

	if len(text) <= len(hit.Snippet) {
		result.ArticleText = hit.Snippet
		return result
	}
	result.ArticleText = text
	result.Enriched = true
	return result
}

// fetchWithResilience wraps the fetch in the shared retry and circuit
// breaker. URL/SSRF validation happens inside the HTTP client, governed
// by its own config.
func (e *Enricher) fetchWithResilience(ctx context.Context, rawURL string) (string, error) {
	var text string
	err := retry.WithBackoff(ctx, e.retryConfig, func() error {
		result, err := e.circuitBreaker.Execute(func() (interface{}, error) {
			return e.doFetch(ctx, rawURL)
		})
		if err != nil {
			return err
		}
		text = result.(string)
		return nil
	})
	return text, err
}

func (e *Enricher) doFetch(ctx context.Context, rawURL string) (interface{}, error) {
	body, resp, err := e.client.Get(ctx, rawURL)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return "", err
	}
	stripChrome(doc)

	text := contentBySelectors(doc)
	if text == "" {
		text = e.contentByReadability(doc, resp, rawURL)
	}
	if text == "" {
		text = paragraphText(doc)
	}
	if text == "" {
		return "", io.ErrUnexpectedEOF
	}

	text = e.sanitizer.Sanitize(text)
	text = collapseWhitespace(text)
	if len(text) > maxArticleChars {
		text = text[:maxArticleChars]
	}
	return text, nil
}

// minContentChars is the length a content-selector match must reach to be
// trusted as the article body.
const minContentChars = 200

// contentSelectors is the priority list tried against the cleaned page;
// the first selector yielding enough text wins.
var contentSelectors = []string{
	"article .content", "article .body", ".article-content",
	".post-content", ".entry-content", "main", "article",
}

func contentBySelectors(doc *goquery.Document) string {
	for _, sel := range contentSelectors {
		text := strings.TrimSpace(doc.Find(sel).First().Text())
		if len(text) >= minContentChars {
			return text
		}
	}
	return ""
}

// contentByReadability runs the Readability extractor over the cleaned
// page when none of the known content selectors matched. Failures fall
// through to the paragraph-concatenation pass.
func (e *Enricher) contentByReadability(doc *goquery.Document, resp *http.Response, rawURL string) string {
	html, err := doc.Html()
	if err != nil {
		return ""
	}

	parsedURL, parseErr := url.Parse(rawURL)
	if resp != nil && resp.Request != nil && resp.Request.URL != nil {
		parsedURL = resp.Request.URL
	} else if parseErr != nil {
		parsedURL = nil
	}

	article, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err != nil {
		return ""
	}
	text := strings.TrimSpace(article.TextContent)
	if len(text) >= minContentChars {
		return text
	}
	return ""
}

// paragraphText is the last-resort extraction: concatenate every <p> on
// the page, whatever its container.
func paragraphText(doc *goquery.Document) string {
	var parts []string
	doc.Find("p").Each(func(i int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var chromeSelectors = []string{
	"nav", "script", "style", "footer", "header",
	".advertisement", ".ad", ".sidebar", ".comments", ".social-share", ".cookie-banner",
}

// stripChrome removes common non-content chrome (nav bars, scripts, ads,
// comment sections) from the parsed page before content extraction, the
// same way this codebase's web scrapers use goquery selectors to isolate
// meaningful content before further processing.
func stripChrome(doc *goquery.Document) {
	for _, sel := range chromeSelectors {
		doc.Find(sel).Remove()
	}
}
