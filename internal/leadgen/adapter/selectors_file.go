package adapter

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"leadscout/internal/infra/httpclient"
	"leadscout/internal/leadgen/health"
)

// selectorFileEntry is one provider's selector table as written in the
// optional override file. QueryTemplate must contain a single %s, which
// receives the URL-escaped query.
type selectorFileEntry struct {
	Name            string `yaml:"name"`
	QueryTemplate   string `yaml:"query_template"`
	ItemSelector    string `yaml:"item_selector"`
	TitleSelector   string `yaml:"title_selector"`
	URLSelector     string `yaml:"url_selector"`
	SnippetSelector string `yaml:"snippet_selector"`
}

type selectorFile struct {
	Providers []selectorFileEntry `yaml:"providers"`
}

// NewHTMLSearchAdaptersFromConfig builds the HTML search adapter family,
// optionally layering a YAML selector file over the built-in provider
// tables: same-named entries replace the built-in selectors (search
// engines change their markup more often than we cut releases), new
// names add providers. An unreadable file logs a warning and falls back
// to the built-ins.
func NewHTMLSearchAdaptersFromConfig(client *httpclient.Client, recorder health.Recorder,
	disabled map[string]bool, overridePath string) []SourceAdapter {

	providers := htmlProviders()
	if overridePath != "" {
		overrides, err := loadSelectorFile(overridePath)
		if err != nil {
			slog.Warn("selector override file unreadable, using built-in tables",
				slog.String("path", overridePath), slog.Any("error", err))
		} else {
			providers = mergeProviders(providers, overrides)
		}
	}

	out := make([]SourceAdapter, 0, len(providers))
	for _, p := range providers {
		out = append(out, newHTMLSearchAdapter(p, client, recorder, !disabled[p.name]))
	}
	return out
}

func loadSelectorFile(path string) ([]htmlProvider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var parsed selectorFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse selector file: %w", err)
	}

	providers := make([]htmlProvider, 0, len(parsed.Providers))
	for _, entry := range parsed.Providers {
		if entry.Name == "" || entry.QueryTemplate == "" || entry.ItemSelector == "" {
			return nil, fmt.Errorf("selector entry %q: name, query_template, and item_selector are required", entry.Name)
		}
		template := entry.QueryTemplate
		providers = append(providers, htmlProvider{
			name: entry.Name,
			queryURL: func(q string) string {
				return fmt.Sprintf(template, url.QueryEscape(q))
			},
			itemSelector:    entry.ItemSelector,
			titleSelector:   entry.TitleSelector,
			urlSelector:     entry.URLSelector,
			snippetSelector: entry.SnippetSelector,
		})
	}
	return providers, nil
}

func mergeProviders(builtin, overrides []htmlProvider) []htmlProvider {
	byName := make(map[string]int, len(builtin))
	merged := append([]htmlProvider(nil), builtin...)
	for i, p := range merged {
		byName[p.name] = i
	}
	for _, o := range overrides {
		if idx, ok := byName[o.name]; ok {
			// Keep the built-in redirect unwrapper; the file only
			// carries selectors.
			o.unwrapRedirect = merged[idx].unwrapRedirect
			merged[idx] = o
			continue
		}
		merged = append(merged, o)
	}
	return merged
}
