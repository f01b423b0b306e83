package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"leadscout/internal/infra/httpclient"
	"leadscout/internal/leadgen/domain"
)

func TestEnrich_LongSnippetSkipsFetch(t *testing.T) {
	e := New(httpclient.New(httpclient.DefaultConfig()), nil)
	hit := domain.RawHit{
		URL:     "https://example.com/a",
		Snippet: strings.Repeat("word ", 50),
	}

	result := e.Enrich(context.Background(), hit)

	assert.False(t, result.Enriched)
	assert.Equal(t, hit.Snippet, result.ArticleText)
}

func TestEnrich_FetchesAndCleansArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><nav>menu</nav><article><p>` + strings.Repeat("Hotel project announced in the city today. ", 10) + `</p></article></body></html>`))
	}))
	defer srv.Close()

	// The test server listens on loopback, so private-IP denial is off.
	cfg := httpclient.DefaultConfig()
	cfg.DenyPrivateIPs = false
	e := New(httpclient.New(cfg), nil)
	hit := domain.RawHit{URL: srv.URL, Snippet: "short"}

	result := e.Enrich(context.Background(), hit)

	assert.True(t, result.Enriched)
	assert.Contains(t, result.ArticleText, "Hotel project announced")
}

func TestEnrich_ContentSelectorWinsOverParagraphs(t *testing.T) {
	articleBody := strings.Repeat("The resort operator confirmed the construction schedule. ", 6)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
<div class="sidebar"><p>subscribe to our newsletter</p></div>
<div class="post-content">` + articleBody + `</div>
<p>unrelated footer paragraph somewhere else on the page</p>
</body></html>`))
	}))
	defer srv.Close()

	cfg := httpclient.DefaultConfig()
	cfg.DenyPrivateIPs = false
	e := New(httpclient.New(cfg), nil)

	result := e.Enrich(context.Background(), domain.RawHit{URL: srv.URL, Snippet: "short"})

	assert.True(t, result.Enriched)
	assert.Contains(t, result.ArticleText, "resort operator confirmed")
	// The selector match is used alone; stray paragraphs outside the
	// content container are not concatenated in.
	assert.NotContains(t, result.ArticleText, "unrelated footer paragraph")
	assert.NotContains(t, result.ArticleText, "subscribe")
}

func TestEnrich_ParagraphFallbackWhenSelectorsTooShort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
<div class="post-content">too short</div>
<p>First paragraph about the planned hotel development downtown.</p>
<p>Second paragraph with further detail on the construction timeline.</p>
</body></html>`))
	}))
	defer srv.Close()

	cfg := httpclient.DefaultConfig()
	cfg.DenyPrivateIPs = false
	e := New(httpclient.New(cfg), nil)

	result := e.Enrich(context.Background(), domain.RawHit{URL: srv.URL, Snippet: "short"})

	assert.True(t, result.Enriched)
	assert.Contains(t, result.ArticleText, "First paragraph about the planned hotel")
	assert.Contains(t, result.ArticleText, "Second paragraph with further detail")
}

func TestEnrich_FailureKeepsOriginalSnippet(t *testing.T) {
	e := New(httpclient.New(httpclient.DefaultConfig()), nil)
	hit := domain.RawHit{URL: "https://127.0.0.1.nip.io:1/unreachable", Snippet: "short snippet"}

	result := e.Enrich(context.Background(), hit)

	assert.False(t, result.Enriched)
	assert.Equal(t, "short snippet", result.ArticleText)
}
