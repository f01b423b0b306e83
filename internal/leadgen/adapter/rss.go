package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"

	"leadscout/internal/infra/httpclient"
	"leadscout/internal/leadgen/domain"
	"leadscout/internal/leadgen/health"
	"leadscout/internal/resilience/circuitbreaker"
	"leadscout/internal/resilience/retry"
)

// RSSAdapter searches a fixed list of RSS/Atom feed URLs for items whose
// title or description mentions any of the job's keywords. It generalizes
// this codebase's RSSFetcher (a gofeed.Parser wrapped in retry +
// circuit-breaker) from "pull everything" to "pull and keyword-filter."
type RSSAdapter struct {
	feeds          []string
	client         *httpclient.Client
	recorder       health.Recorder
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

func NewRSS(feeds []string, client *httpclient.Client, recorder health.Recorder) *RSSAdapter {
	return &RSSAdapter{
		feeds:          feeds,
		client:         client,
		recorder:       recorder,
		circuitBreaker: circuitbreaker.New(circuitbreaker.AdapterConfig("rss")),
		retryConfig:    retry.FeedFetchConfig(),
	}
}

func (a *RSSAdapter) Name() string { return "rss" }

func (a *RSSAdapter) Enabled() bool { return len(a.feeds) > 0 }

func (a *RSSAdapter) Quota(maxResults int) int { return maxResults }

func (a *RSSAdapter) Search(ctx context.Context, keywords []string, maxResults int) ([]domain.RawHit, error) {
	var hits []domain.RawHit
	for _, feedURL := range a.feeds {
		if len(hits) >= maxResults {
			break
		}
		start := time.Now()
		items, err := a.fetch(ctx, feedURL)
		if err != nil {
			a.recorder.RecordFailure(a.Name(), time.Since(start), health.ClassOther, err)
			slog.Warn("rss adapter: feed fetch failed", slog.String("feed_url", feedURL), slog.Any("error", err))
			continue
		}
		matched := filterByKeywords(items, keywords)
		a.recorder.RecordSuccess(a.Name(), time.Since(start), len(matched))
		hits = append(hits, matched...)
	}
	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}
	return hits, nil
}

type rssItem struct {
	title       string
	url         string
	description string
	author      string
	publishedAt time.Time
}

func (a *RSSAdapter) fetch(ctx context.Context, feedURL string) ([]rssItem, error) {
	var items []rssItem
	retryErr := retry.WithBackoff(ctx, a.retryConfig, func() error {
		result, err := a.circuitBreaker.Execute(func() (interface{}, error) {
			return a.doFetch(ctx, feedURL)
		})
		if err != nil {
			if gobreakerOpen(err) {
				slog.Warn("rss adapter circuit breaker open", slog.String("feed_url", feedURL))
			}
			return err
		}
		items = result.([]rssItem)
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}
	return items, nil
}

func (a *RSSAdapter) doFetch(ctx context.Context, feedURL string) ([]rssItem, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = "LeadScoutBot/1.0"
	fp.Client = a.client.Raw()

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	items := make([]rssItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		pubAt := time.Now()
		if it.PublishedParsed != nil {
			pubAt = *it.PublishedParsed
		}
		description := it.Description
		if description == "" {
			description = it.Content
		}
		author := ""
		if it.Author != nil {
			author = it.Author.Name
		}
		items = append(items, rssItem{
			title:       it.Title,
			url:         it.Link,
			description: description,
			author:      author,
			publishedAt: pubAt,
		})
	}
	return items, nil
}

func filterByKeywords(items []rssItem, keywords []string) []domain.RawHit {
	if len(keywords) == 0 {
		hits := make([]domain.RawHit, 0, len(items))
		for _, it := range items {
			hits = append(hits, toRawHit(it))
		}
		return hits
	}

	var hits []domain.RawHit
	for _, it := range items {
		if matchesAnyKeyword(it.title+" "+it.description, keywords) {
			hits = append(hits, toRawHit(it))
		}
	}
	return hits
}

func toRawHit(it rssItem) domain.RawHit {
	return domain.RawHit{
		Source:      "rss",
		Engine:      "rss",
		URL:         it.url,
		URLVerified: it.url != "",
		Title:       it.title,
		Snippet:     it.description,
		Author:      it.author,
		PublishedAt: it.publishedAt,
	}
}

func gobreakerOpen(err error) bool {
	return err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests
}
