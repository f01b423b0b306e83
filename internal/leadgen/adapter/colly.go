package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"leadscout/internal/leadgen/domain"
	"leadscout/internal/leadgen/health"
	"leadscout/internal/leadgen/urlkit"
)

// CollyAdapter crawls a fixed set of industry/directory sites looking for
// outbound links whose anchor text mentions the job's keywords. Unlike
// RSSAdapter and HTMLSearchAdapter (which hit one known URL shape), this
// adapter needs to follow links across a site, so it reaches for colly's
// crawler rather than a single goquery.Document parse.
type CollyAdapter struct {
	startURLs []string
	maxDepth  int
	userAgent string
	recorder  health.Recorder
}

func NewColly(startURLs []string, userAgent string, recorder health.Recorder) *CollyAdapter {
	if userAgent == "" {
		userAgent = "LeadScoutBot/1.0"
	}
	return &CollyAdapter{
		startURLs: startURLs,
		maxDepth:  2,
		userAgent: userAgent,
		recorder:  recorder,
	}
}

func (a *CollyAdapter) Name() string { return "colly" }

func (a *CollyAdapter) Enabled() bool { return len(a.startURLs) > 0 }

func (a *CollyAdapter) Quota(maxResults int) int { return maxResults }

func (a *CollyAdapter) Search(ctx context.Context, keywords []string, maxResults int) ([]domain.RawHit, error) {
	var hits []domain.RawHit
	seen := make(map[string]bool)

	for _, start := range a.startURLs {
		if len(hits) >= maxResults {
			break
		}
		start := start
		startTime := time.Now()

		c := colly.NewCollector(
			colly.UserAgent(a.userAgent),
			colly.MaxDepth(a.maxDepth),
			colly.Async(false),
		)
		_ = c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 2, Delay: 250 * time.Millisecond})

		var crawlErr error
		c.OnError(func(r *colly.Response, err error) {
			crawlErr = err
		})

		c.OnHTML("a[href]", func(e *colly.HTMLElement) {
			if len(hits) >= maxResults {
				return
			}
			text := strings.TrimSpace(e.Text)
			if text == "" || !matchesAnyKeyword(text, keywords) {
				return
			}
			href := e.Request.AbsoluteURL(e.Attr("href"))
			if href == "" || !urlkit.IsArticleURL(href) {
				return
			}
			if seen[href] {
				return
			}
			seen[href] = true
			hits = append(hits, domain.RawHit{
				Source:      a.Name(),
				Engine:      a.Name(),
				URL:         href,
				URLVerified: true,
				Title:       text,
				PublishedAt: time.Now(),
			})
		})

		if err := c.Request("GET", start, nil, nil, nil); err != nil {
			crawlErr = err
		}
		c.Wait()

		if crawlErr != nil {
			a.recorder.RecordFailure(a.Name(), time.Since(startTime), health.ClassOther, crawlErr)
			slog.Warn("colly adapter: crawl failed", slog.String("start_url", start), slog.Any("error", crawlErr))
			continue
		}
		a.recorder.RecordSuccess(a.Name(), time.Since(startTime), len(hits))

		select {
		case <-ctx.Done():
			return hits, fmt.Errorf("colly adapter: %w", ctx.Err())
		default:
		}
	}

	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}
	return hits, nil
}
