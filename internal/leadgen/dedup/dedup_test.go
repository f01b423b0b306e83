package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"leadscout/internal/leadgen/domain"
)

func TestDeduplicate_ExactURLMatch(t *testing.T) {
	hits := []domain.RawHit{
		{Source: "rss", URL: "https://example.com/story?utm_source=x", Title: "Hotel breaks ground"},
		{Source: "rss", URL: "https://example.com/story", Title: "Hotel breaks ground"},
	}

	result := Deduplicate(hits)

	assert.Len(t, result, 1)
}

func TestDeduplicate_TitleSimilaritySameDomain(t *testing.T) {
	hits := []domain.RawHit{
		{Source: "rss", URL: "https://example.com/a", Title: "New luxury hotel opens downtown"},
		{Source: "rss", URL: "https://example.com/b", Title: "New luxury hotel opens downtown today"},
	}

	result := Deduplicate(hits)

	assert.Len(t, result, 1)
}

func TestDeduplicate_SameTitleDifferentDomainKept(t *testing.T) {
	hits := []domain.RawHit{
		{Source: "rss", URL: "https://example.com/a", Title: "Construction starts"},
		{Source: "rss", URL: "https://other.com/b", Title: "Construction starts"},
	}

	result := Deduplicate(hits)

	assert.Len(t, result, 2)
}

func TestDeduplicate_InvalidURLSynthesizesFallback(t *testing.T) {
	hits := []domain.RawHit{
		{Source: "search", URL: "", Title: "Hotel Project Announced"},
	}

	result := Deduplicate(hits)

	assert.Len(t, result, 1)
	assert.Contains(t, result[0].URL, "news-search-result")
}
