package extract

import (
	"context"
	"log/slog"
	"time"

	"leadscout/internal/leadgen/domain"
	"leadscout/internal/observability/metrics"
)

// Extractor runs the hybrid pattern+LLM pass over an enriched hit. llm may
// be nil when no provider API key is configured, in which case only the
// pattern pass runs — mirroring the NoOp summarizer fallback this
// codebase uses when no AI provider is available.
type Extractor struct {
	llm *LLM
}

func New(llm *LLM) *Extractor {
	return &Extractor{llm: llm}
}

// Run executes the pattern pass, then the LLM pass when cfg gates it on,
// and merges the two.
func (e *Extractor) Run(ctx context.Context, cfg domain.Config, hit domain.EnrichedHit) domain.ExtractedData {
	start := time.Now()
	text := hit.ArticleText
	if text == "" {
		text = hit.Snippet
	}
	pattern := Pattern(hit.Title, text, cfg.Keywords)

	if !e.shouldCallLLM(cfg, pattern) {
		metrics.RecordExtraction("pattern", true, time.Since(start))
		return pattern
	}

	llmResult, err := e.llm.Extract(ctx, hit.Title, text, cfg.Columns)
	if err != nil {
		slog.Debug("llm extraction unavailable, using pattern result only",
			slog.String("url", hit.URL), slog.Any("error", err))
		metrics.RecordExtraction("ai", false, time.Since(start))
		return pattern
	}
	metrics.RecordExtraction("ai", true, time.Since(start))
	return Merge(pattern, &llmResult)
}

// shouldCallLLM gates the LLM pass on Config.UseAI, the presence of a
// configured backend, and — in SmartMode — on the pattern pass having
// produced a low-confidence result. The gate is never silently overridden:
// if UseAI is false, the LLM is never called, full stop.
func (e *Extractor) shouldCallLLM(cfg domain.Config, pattern domain.ExtractedData) bool {
	if !cfg.UseAI || e.llm == nil {
		return false
	}
	if cfg.SmartMode && pattern.Confidence >= 50 {
		return false
	}
	return true
}
