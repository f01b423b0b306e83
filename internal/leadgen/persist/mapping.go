package persist

import (
	"net/url"
	"strings"

	"leadscout/internal/leadgen/domain"
	"leadscout/internal/leadgen/urlkit"
)

// MapStatus folds a raw project-stage phrase onto the lead pipeline's
// status enum. Unrecognized (or empty) phrases land on "new". The mapping
// is total and idempotent: mapping an already-mapped value returns it
// unchanged.
func MapStatus(raw string) domain.LeadStatus {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	switch normalized {
	case "proposed", "planning", "announced", string(domain.StatusNew):
		return domain.StatusNew
	case "under_construction", "in_progress", string(domain.StatusQualified):
		return domain.StatusQualified
	case "completed", string(domain.StatusWon):
		return domain.StatusWon
	case "cancelled", "canceled", "on_hold", string(domain.StatusLost):
		return domain.StatusLost
	case string(domain.StatusContacted):
		return domain.StatusContacted
	case string(domain.StatusProposal):
		return domain.StatusProposal
	case string(domain.StatusArchived):
		return domain.StatusArchived
	default:
		return domain.StatusNew
	}
}

// MapPriority folds urgency language onto the priority enum, defaulting
// to medium. Total and idempotent, like MapStatus.
func MapPriority(raw string) domain.LeadPriority {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch normalized {
	case "urgent", "fast-track", "immediately":
		return domain.PriorityUrgent
	case "high", "high priority":
		return domain.PriorityHigh
	case "low":
		return domain.PriorityLow
	case string(domain.PriorityMedium):
		return domain.PriorityMedium
	default:
		return domain.PriorityMedium
	}
}

var socialHosts = []string{"twitter.com", "x.com", "facebook.com", "linkedin.com", "instagram.com", "reddit.com"}

var jobBoardHosts = []string{"indeed.com", "glassdoor.com", "monster.com", "ziprecruiter.com", "lever.co", "greenhouse.io"}

var newsSiteMarkers = []string{"news", "wire", "press", "journal", "times", "post", "herald", "tribune"}

// DeriveSourceType classifies a lead source from its human-readable name
// and URL. Heuristic ordering matters: explicit feed/API markers beat the
// fuzzier news-site name match.
func DeriveSourceType(sourceName, rawURL string) domain.LeadSourceType {
	name := strings.ToLower(sourceName)
	host := urlkit.ExtractDomain(rawURL)

	switch {
	case strings.Contains(name, "rss") || strings.Contains(name, "feed"):
		return domain.LeadSourceRSSFeed
	case hostIn(host, socialHosts):
		return domain.LeadSourceSocial
	case hostIn(host, jobBoardHosts):
		return domain.LeadSourceJobBoard
	case strings.Contains(name, "api") || strings.HasPrefix(host, "api."):
		return domain.LeadSourceAPI
	case containsAny(name, newsSiteMarkers) || containsAny(host, newsSiteMarkers):
		return domain.LeadSourceNewsSite
	case host != "":
		return domain.LeadSourceWebsite
	default:
		return domain.LeadSourceOther
	}
}

func hostIn(host string, hosts []string) bool {
	for _, h := range hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// sourceNameOf prefers the adapter's human-readable source, falling back
// to the engine id.
func sourceNameOf(hit domain.EnrichedHit) string {
	if hit.Source != "" {
		return hit.Source
	}
	return hit.Engine
}

// originOf reduces a URL to its scheme+host origin for the LeadSource row.
func originOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return parsed.Scheme + "://" + parsed.Host
}
