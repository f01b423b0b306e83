package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadscout/internal/leadgen/adapter"
	"leadscout/internal/leadgen/domain"
	"leadscout/internal/leadgen/health"
	"leadscout/internal/leadgen/progress"
)

type fakeAdapter struct {
	name     string
	enabled  bool
	hits     []domain.RawHit
	err      error
	fallback []domain.RawHit
}

func (f *fakeAdapter) Name() string             { return f.name }
func (f *fakeAdapter) Enabled() bool            { return f.enabled }
func (f *fakeAdapter) Quota(maxResults int) int { return maxResults }

func (f *fakeAdapter) Search(ctx context.Context, keywords []string, maxResults int) ([]domain.RawHit, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.hits) > maxResults {
		return f.hits[:maxResults], nil
	}
	return f.hits, nil
}

func (f *fakeAdapter) FallbackSearch(ctx context.Context, keywords []string, maxResults int) ([]domain.RawHit, error) {
	return f.fallback, nil
}

type nopRecorder struct{}

func (nopRecorder) RecordSuccess(string, time.Duration, int)                      {}
func (nopRecorder) RecordFailure(string, time.Duration, health.ErrorClass, error) {}

type memRecorder struct {
	successes map[string]int
	failures  map[string]health.ErrorClass
}

func newMemRecorder() *memRecorder {
	return &memRecorder{successes: make(map[string]int), failures: make(map[string]health.ErrorClass)}
}

func (r *memRecorder) RecordSuccess(engine string, _ time.Duration, results int) {
	r.successes[engine] = results
}

func (r *memRecorder) RecordFailure(engine string, _ time.Duration, class health.ErrorClass, _ error) {
	r.failures[engine] = class
}

func hit(url, title string) domain.RawHit {
	return domain.RawHit{URL: url, Title: title, URLVerified: true, PublishedAt: time.Now()}
}

func TestDispatch_CollectsFromAllAdapters(t *testing.T) {
	registry := adapter.NewRegistry(
		&fakeAdapter{name: "a", enabled: true, hits: []domain.RawHit{hit("https://x.tld/1", "one")}},
		&fakeAdapter{name: "b", enabled: true, hits: []domain.RawHit{hit("https://x.tld/2", "two")}},
	)
	d := New(registry, nopRecorder{}, nil)

	hits, errs := d.Dispatch(context.Background(), domain.Config{
		Keywords: []string{"hotel"}, MaxResults: 10,
	}, "job-1")

	assert.Len(t, hits, 2)
	assert.Empty(t, errs)
}

func TestDispatch_OneFailingAdapterDoesNotKillOthers(t *testing.T) {
	registry := adapter.NewRegistry(
		&fakeAdapter{name: "bad", enabled: true, err: errors.New("http 403: forbidden")},
		&fakeAdapter{name: "good", enabled: true, hits: []domain.RawHit{hit("https://x.tld/1", "one")}},
	)
	d := New(registry, nopRecorder{}, nil)

	hits, errs := d.Dispatch(context.Background(), domain.Config{
		Keywords: []string{"hotel"}, MaxResults: 10,
	}, "job-1")

	assert.Len(t, hits, 1)
	require.Len(t, errs, 1)
	assert.Equal(t, "bad", errs[0].Source)
	assert.Contains(t, errs[0].Err, "403")
}

func TestDispatch_RecordsPerAdapterOutcome(t *testing.T) {
	registry := adapter.NewRegistry(
		&fakeAdapter{name: "good", enabled: true, hits: []domain.RawHit{hit("https://x.tld/1", "one"), hit("https://x.tld/2", "two")}},
		&fakeAdapter{name: "blocked", enabled: true, err: errors.New("HTTP 403: Forbidden")},
	)
	recorder := newMemRecorder()
	d := New(registry, recorder, nil)

	d.Dispatch(context.Background(), domain.Config{Keywords: []string{"hotel"}, MaxResults: 10}, "job-1")

	assert.Equal(t, 2, recorder.successes["good"])
	assert.Equal(t, health.ClassBlocked, recorder.failures["blocked"])
}

func TestDispatch_SourcesSubsetFiltersAdapters(t *testing.T) {
	registry := adapter.NewRegistry(
		&fakeAdapter{name: "a", enabled: true, hits: []domain.RawHit{hit("https://x.tld/1", "one")}},
		&fakeAdapter{name: "b", enabled: true, hits: []domain.RawHit{hit("https://x.tld/2", "two")}},
	)
	d := New(registry, nopRecorder{}, nil)

	hits, _ := d.Dispatch(context.Background(), domain.Config{
		Keywords: []string{"hotel"}, Sources: []string{"b"}, MaxResults: 10,
	}, "job-1")

	require.Len(t, hits, 1)
	assert.Equal(t, "https://x.tld/2", hits[0].URL)
}

func TestDispatch_FallbackRunsWhenAllEmpty(t *testing.T) {
	registry := adapter.NewRegistry(
		&fakeAdapter{name: "empty", enabled: true, fallback: []domain.RawHit{hit("https://x.tld/fb", "recovered headline")}},
	)
	d := New(registry, nopRecorder{}, nil)

	hits, errs := d.Dispatch(context.Background(), domain.Config{
		Keywords: []string{"hotel"}, MaxResults: 10,
	}, "job-1")

	require.Len(t, hits, 1)
	assert.Equal(t, "https://x.tld/fb", hits[0].URL)
	assert.Empty(t, errs)
}

func TestDispatch_TruncatesToMaxResults(t *testing.T) {
	many := make([]domain.RawHit, 0, 20)
	for i := 0; i < 20; i++ {
		many = append(many, hit("https://x.tld/"+string(rune('a'+i)), "title"))
	}
	registry := adapter.NewRegistry(&fakeAdapter{name: "a", enabled: true, hits: many})
	d := New(registry, nopRecorder{}, nil)

	hits, _ := d.Dispatch(context.Background(), domain.Config{
		Keywords: []string{"hotel"}, MaxResults: 8,
	}, "job-1")

	assert.Len(t, hits, 8)
}

func TestDispatch_PublishesScrapingProgress(t *testing.T) {
	registry := adapter.NewRegistry(
		&fakeAdapter{name: "a", enabled: true, hits: []domain.RawHit{hit("https://x.tld/1", "one")}},
		&fakeAdapter{name: "b", enabled: true, hits: []domain.RawHit{hit("https://x.tld/2", "two")}},
	)
	bus := progress.New()
	var events []progress.Event
	bus.Subscribe("job-1", func(ev progress.Event) { events = append(events, ev) })

	d := New(registry, nopRecorder{}, bus)
	d.Dispatch(context.Background(), domain.Config{Keywords: []string{"hotel"}, MaxResults: 10}, "job-1")

	require.Len(t, events, 2)
	assert.Equal(t, "scraping", events[0].Stage)
	assert.Equal(t, 2, events[1].Progress)
	assert.Equal(t, 100, events[1].Percentage)
}
