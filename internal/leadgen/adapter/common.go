package adapter

import "strings"

// matchesAnyKeyword reports whether text case-insensitively contains any
// of keywords. Adapters that can't filter server-side (plain RSS feeds)
// use this to narrow results down to the job's actual search terms.
func matchesAnyKeyword(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// joinKeywords builds the query string most search-style APIs expect: an
// OR of all configured keywords.
func joinKeywords(keywords []string) string {
	return strings.Join(keywords, " OR ")
}
