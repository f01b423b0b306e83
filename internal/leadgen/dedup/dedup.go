// Package dedup removes duplicate hits from a single dispatch batch before
// they reach the enricher. It generalizes the batch-existence pre-check
// this codebase's article repository already does against the database
// (ExistsByURLBatch) to an in-memory, same-batch version, plus a
// title-similarity check for hits whose URLs differ (tracking params,
// syndication mirrors) but which are really the same story.
package dedup

import (
	"strings"

	"leadscout/internal/leadgen/domain"
	"leadscout/internal/leadgen/urlkit"
)

const titleSimilarityThreshold = 0.8

// Deduplicate returns hits with exact (normalized URL, lowercased title)
// duplicates removed, then collapses near-duplicate titles within the
// same domain.
func Deduplicate(hits []domain.RawHit) []domain.RawHit {
	seen := make(map[string]bool, len(hits))
	exactDeduped := make([]domain.RawHit, 0, len(hits))

	for _, h := range hits {
		h.Title = strings.TrimSpace(h.Title)
		if len(h.Title) < 5 {
			continue
		}
		u := h.URL
		if u == "" || !urlkit.IsArticleURL(u) {
			u = urlkit.SynthesizeFallback(h.Title, h.Source)
			h.URL = u
		}
		key := urlkit.Normalize(u) + "|" + strings.ToLower(strings.TrimSpace(h.Title))
		if seen[key] {
			continue
		}
		seen[key] = true
		exactDeduped = append(exactDeduped, h)
	}

	return collapseByTitleSimilarity(exactDeduped)
}

func collapseByTitleSimilarity(hits []domain.RawHit) []domain.RawHit {
	type bucket struct {
		hit    domain.RawHit
		tokens map[string]bool
	}
	var kept []bucket

	for _, h := range hits {
		domainOf := urlkit.ExtractDomain(h.URL)
		tokens := tokenize(h.Title)
		duplicate := false
		for _, k := range kept {
			if urlkit.ExtractDomain(k.hit.URL) != domainOf {
				continue
			}
			if jaccard(tokens, k.tokens) >= titleSimilarityThreshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, bucket{hit: h, tokens: tokens})
		}
	}

	result := make([]domain.RawHit, 0, len(kept))
	for _, k := range kept {
		result = append(result, k.hit)
	}
	return result
}

// TitleSimilarity is the Jaccard similarity over 3+-char tokens of two
// titles, shared with the persister's duplicate-lead check.
func TitleSimilarity(a, b string) float64 {
	return jaccard(tokenize(a), tokenize(b))
}

func tokenize(title string) map[string]bool {
	words := strings.Fields(strings.ToLower(title))
	tokens := make(map[string]bool, len(words))
	for _, w := range words {
		if len(w) >= 3 {
			tokens[w] = true
		}
	}
	return tokens
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	intersection := 0
	for t := range a {
		if b[t] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
