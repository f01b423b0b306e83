// Package dispatch fans a scrape job's keyword set out across every
// enabled source adapter concurrently and collects whatever comes back.
// It generalizes this codebase's crawl-all-sources fan-out (an errgroup
// over feed fetchers, each failure logged and recorded but never allowed
// to cancel its siblings) from "crawl every stored feed" to "query every
// registered search adapter."
package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"leadscout/internal/leadgen/adapter"
	"leadscout/internal/leadgen/domain"
	"leadscout/internal/leadgen/health"
	"leadscout/internal/leadgen/progress"
	"leadscout/internal/observability/metrics"
)

// minQuota is the floor on each adapter's share of the job's result
// budget: even with many enabled adapters each one gets to return a few
// hits.
const minQuota = 5

// fallbackAdapterLimit caps how many HTML search adapters the last-resort
// pass queries.
const fallbackAdapterLimit = 3

// SourceError attributes one adapter failure for the job's diagnostics.
type SourceError struct {
	Source string
	Err    string
}

// fallbackSearcher is implemented by adapters that support the relaxed
// last-resort pass (currently the HTML search family).
type fallbackSearcher interface {
	FallbackSearch(ctx context.Context, keywords []string, maxResults int) ([]domain.RawHit, error)
}

// Dispatcher runs the fan-out. The progress bus is optional; a nil bus
// skips per-adapter progress events.
type Dispatcher struct {
	registry *adapter.Registry
	recorder health.Recorder
	bus      *progress.Bus
}

func New(registry *adapter.Registry, recorder health.Recorder, bus *progress.Bus) *Dispatcher {
	return &Dispatcher{registry: registry, recorder: recorder, bus: bus}
}

// Dispatch queries every enabled adapter concurrently and returns the
// combined hit list (order across adapters is meaningless) plus any
// per-adapter failures. One bad adapter never fails the others: errors
// are captured here, not propagated through the group.
func (d *Dispatcher) Dispatch(ctx context.Context, cfg domain.Config, jobID string) ([]domain.RawHit, []SourceError) {
	adapters := d.registry.Enabled(cfg.Sources)
	if len(adapters) == 0 {
		slog.Warn("dispatch: no enabled adapters for job",
			slog.String("job_id", jobID),
			slog.Any("requested_sources", cfg.Sources))
		return nil, nil
	}

	quota := cfg.MaxResults / len(adapters)
	if quota < minQuota {
		quota = minQuota
	}

	var (
		mu     sync.Mutex
		hits   []domain.RawHit
		errors []SourceError
		done   int
	)

	var group errgroup.Group
	for _, a := range adapters {
		a := a
		group.Go(func() error {
			ask := a.Quota(quota)
			if ask > quota {
				ask = quota
			}
			start := time.Now()
			found, err := a.Search(ctx, cfg.Keywords, ask)

			metrics.RecordDispatch(a.Name(), time.Since(start))

			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				d.recorder.RecordFailure(a.Name(), time.Since(start), health.Classify(err), err)
				metrics.RecordDispatchError(a.Name(), "search_failed")
				errors = append(errors, SourceError{Source: a.Name(), Err: err.Error()})
				slog.Warn("dispatch: adapter failed",
					slog.String("job_id", jobID),
					slog.String("engine", a.Name()),
					slog.Duration("elapsed", time.Since(start)),
					slog.Any("error", err))
			} else {
				d.recorder.RecordSuccess(a.Name(), time.Since(start), len(found))
				metrics.RecordHitsFetched(a.Name(), len(found))
				hits = append(hits, found...)
				slog.Info("dispatch: adapter finished",
					slog.String("job_id", jobID),
					slog.String("engine", a.Name()),
					slog.Int("results", len(found)),
					slog.Duration("elapsed", time.Since(start)))
			}
			d.publish(jobID, done, len(adapters), a.Name())
			return nil
		})
	}
	_ = group.Wait()

	if len(hits) == 0 {
		hits = d.fallbackSearch(ctx, cfg, jobID)
	}

	if len(hits) > cfg.MaxResults {
		hits = hits[:cfg.MaxResults]
	}
	return hits, errors
}

// fallbackSearch is the best-effort pass when every adapter struck out:
// re-query a few of the most permissive HTML adapters with the relaxed
// anchor filter. A second empty result is a legitimate outcome, not an
// error.
func (d *Dispatcher) fallbackSearch(ctx context.Context, cfg domain.Config, jobID string) []domain.RawHit {
	var hits []domain.RawHit
	tried := 0
	for _, a := range d.registry.All() {
		if tried >= fallbackAdapterLimit || len(hits) >= cfg.MaxResults {
			break
		}
		fb, ok := a.(fallbackSearcher)
		if !ok || !a.Enabled() {
			continue
		}
		tried++
		found, err := fb.FallbackSearch(ctx, cfg.Keywords, cfg.MaxResults-len(hits))
		if err != nil {
			slog.Debug("dispatch: fallback adapter failed",
				slog.String("job_id", jobID),
				slog.String("engine", a.Name()),
				slog.Any("error", err))
			continue
		}
		hits = append(hits, found...)
	}
	if len(hits) > 0 {
		slog.Info("dispatch: fallback search recovered hits",
			slog.String("job_id", jobID),
			slog.Int("results", len(hits)))
	}
	return hits
}

func (d *Dispatcher) publish(jobID string, done, total int, engine string) {
	if d.bus == nil {
		return
	}
	d.bus.Publish(progress.Event{
		JobID:    jobID,
		Stage:    "scraping",
		Progress: done,
		Total:    total,
		Message:  "searched " + engine,
	})
}
