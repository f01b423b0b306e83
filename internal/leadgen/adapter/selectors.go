package adapter

import "net/url"

// htmlProvider describes one HTML search surface: how to build its query
// URL and which CSS selectors pull result items out of the rendered page.
// This is the same shape as entity.ScraperConfig (ItemSelector/
// TitleSelector/URLSelector/DateSelector) generalized from "fixed site, one
// config" to "one config per search engine, query templated in."
type htmlProvider struct {
	name            string
	queryURL        func(query string) string
	itemSelector    string
	titleSelector   string
	urlSelector     string
	snippetSelector string
	// unwrapRedirect strips a search engine's own outbound-link redirect
	// wrapper (e.g. Google's "/url?q=<target>") down to the real target.
	unwrapRedirect func(href string) string
}

func htmlProviders() []htmlProvider {
	return []htmlProvider{
		{
			name:            "google",
			queryURL:        func(q string) string { return "https://www.google.com/search?q=" + url.QueryEscape(q) },
			itemSelector:    "div.g",
			titleSelector:   "h3",
			urlSelector:     "a",
			snippetSelector: "div.VwiC3b",
			unwrapRedirect:  unwrapGoogleRedirect,
		},
		{
			name:            "bing",
			queryURL:        func(q string) string { return "https://www.bing.com/search?q=" + url.QueryEscape(q) },
			itemSelector:    "li.b_algo",
			titleSelector:   "h2",
			urlSelector:     "h2 a",
			snippetSelector: "div.b_caption p",
		},
		{
			name:            "duckduckgo",
			queryURL:        func(q string) string { return "https://html.duckduckgo.com/html/?q=" + url.QueryEscape(q) },
			itemSelector:    "div.result",
			titleSelector:   "a.result__a",
			urlSelector:     "a.result__a",
			snippetSelector: "a.result__snippet",
		},
		{
			name:            "yahoo",
			queryURL:        func(q string) string { return "https://search.yahoo.com/search?p=" + url.QueryEscape(q) },
			itemSelector:    "div.algo",
			titleSelector:   "h3",
			urlSelector:     "h3 a",
			snippetSelector: "div.compText",
		},
		{
			name:            "aol",
			queryURL:        func(q string) string { return "https://search.aol.com/aol/search?q=" + url.QueryEscape(q) },
			itemSelector:    "div.algo",
			titleSelector:   "h3",
			urlSelector:     "h3 a",
			snippetSelector: "div.compText",
		},
	}
}

// unwrapGoogleRedirect pulls the real target out of Google's
// "/url?q=<target>&..." outbound link wrapper.
func unwrapGoogleRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.Path == "/url" || u.Path == "url" {
		if q := u.Query().Get("q"); q != "" {
			return q
		}
	}
	return href
}
