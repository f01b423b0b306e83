// Package extract implements the hybrid pattern+LLM extraction pass:
// pattern.go is the deterministic regex/dictionary pass that always runs;
// llm.go is the optional AI pass that fills in what the pattern pass
// missed. Both produce a domain.ExtractedData and are merged by Merge.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"leadscout/internal/leadgen/domain"
)

// fieldRule is one entry in the pattern table: a compiled regex, the
// field it populates, and an optional post-processing function. Modeling
// extraction rules as data rather than one function per field follows the
// selector-table convention this codebase already uses for scraper
// configuration.
type fieldRule struct {
	Field   string
	Pattern *regexp.Regexp
	Process func(match []string) string
}

var hotelChains = []string{
	"marriott", "hilton", "hyatt", "ihg", "wyndham", "accor", "choice hotels",
	"best western", "radisson", "four seasons",
}

var companySuffix = regexp.MustCompile(`(?i)\b([A-Z][\w&.,'-]*(?:\s+[A-Z][\w&.,'-]*){0,4}\s+(?:Inc\.?|LLC|LLP|Ltd\.?|Group|Hotels?|Resorts?|Corp\.?|Company|Partners))\b`)
var cityStatePattern = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s[A-Z][a-z]+)?),\s([A-Z]{2})\b`)
var inCityPattern = regexp.MustCompile(`(?i)\b(?:in|at|near)\s+([A-Z][a-z]+(?:\s[A-Z][a-z]+)?)\b`)
var budgetPattern = regexp.MustCompile(`\$\s?([0-9]+(?:\.[0-9]+)?)\s?(million|billion|thousand|M|B|k)?`)
var timelinePattern = regexp.MustCompile(`(?i)\b((?:Q[1-4]\s)?(?:20[0-9]{2})|(?:January|February|March|April|May|June|July|August|September|October|November|December)\s20[0-9]{2})\b`)
var roomCountPattern = regexp.MustCompile(`(?i)\b([0-9]{2,4})[\s-]room`)
var sqFootagePattern = regexp.MustCompile(`(?i)\b([0-9,]{3,9})\s?(?:sq\.?\s?ft\.?|square\s?feet|square\s?foot)`)
var employeesPattern = regexp.MustCompile(`(?i)\b([0-9,]{1,6})\s?employees`)
var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
var phonePattern = regexp.MustCompile(`\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}`)
var namTitlePattern = regexp.MustCompile(`([A-Z][a-z]+\s[A-Z][a-z]+),\s(CEO|CFO|COO|President|Director|Manager|VP|Vice President)`)

const unknown = "Unknown"

// Pattern runs every deterministic rule over the given text and returns a
// partially-populated ExtractedData plus a confidence score equal to the
// fraction of the "essential" fields (company, location, projectType,
// budget, timeline) that were actually found.
func Pattern(title, text string, keywords []string) domain.ExtractedData {
	combined := title + "\n" + text

	data := domain.ExtractedData{
		Company:       matchOrUnknown(companySuffix, combined, chainOverride(combined)),
		Location:      locationOf(combined),
		ProjectType:   projectTypeOf(combined),
		Budget:        budgetOf(combined),
		Timeline:      timelineOf(combined),
		RoomCount:     firstGroupOrUnknown(roomCountPattern, combined),
		SquareFootage: firstGroupOrUnknown(sqFootagePattern, combined),
		Employees:     firstGroupOrUnknown(employeesPattern, combined),
		Keywords:      matchedKeywords(combined, keywords),
		Status:        statusPhraseOf(combined),
		Priority:      priorityPhraseOf(combined),
		AIUsed:        false,
	}
	data.ContactInfo, data.Contacts = contactsOf(combined)
	data.Confidence = confidenceOf(data)
	return data
}

// statusPhrases map project-stage language in the article onto the raw
// phrase the persister later folds into a LeadStatus.
var statusPhrases = []string{
	"under construction", "in progress", "on hold", "cancelled", "canceled",
	"completed", "proposed", "planning", "announced",
}

func statusPhraseOf(text string) string {
	lower := strings.ToLower(text)
	for _, phrase := range statusPhrases {
		if strings.Contains(lower, phrase) {
			return phrase
		}
	}
	return ""
}

var priorityPhrases = []string{"urgent", "fast-track", "high priority", "immediately"}

func priorityPhraseOf(text string) string {
	lower := strings.ToLower(text)
	for _, phrase := range priorityPhrases {
		if strings.Contains(lower, phrase) {
			return phrase
		}
	}
	return ""
}

func chainOverride(text string) string {
	lower := strings.ToLower(text)
	for _, chain := range hotelChains {
		if strings.Contains(lower, chain) {
			return titleCase(chain)
		}
	}
	return ""
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func matchOrUnknown(re *regexp.Regexp, text, override string) string {
	if override != "" {
		return override
	}
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return unknown
	}
	return strings.TrimSpace(m[1])
}

func firstGroupOrUnknown(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return unknown
	}
	return strings.TrimSpace(m[1])
}

func locationOf(text string) string {
	if m := cityStatePattern.FindStringSubmatch(text); len(m) == 3 {
		return m[1] + ", " + m[2]
	}
	if m := inCityPattern.FindStringSubmatch(text); len(m) == 2 {
		return m[1]
	}
	return unknown
}

var projectTypeKeywords = map[string]string{
	"renovation":   "renovation",
	"new construction": "new construction",
	"expansion":    "expansion",
	"acquisition":  "acquisition",
	"development":  "development",
	"redevelopment": "redevelopment",
}

func projectTypeOf(text string) string {
	lower := strings.ToLower(text)
	for needle, label := range projectTypeKeywords {
		if strings.Contains(lower, needle) {
			return label
		}
	}
	return unknown
}

func budgetOf(text string) string {
	m := budgetPattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return unknown
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return unknown
	}
	unit := strings.ToLower(m[2])
	switch unit {
	case "billion", "b":
		amount *= 1_000_000_000
	case "million", "m", "":
		amount *= 1_000_000
	case "thousand", "k":
		amount *= 1_000
	}
	return "$" + strconv.FormatFloat(amount, 'f', 0, 64)
}

func timelineOf(text string) string {
	m := timelinePattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return unknown
	}
	return m[1]
}

func matchedKeywords(text string, keywords []string) []string {
	lower := strings.ToLower(text)
	var matched []string
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}

func contactsOf(text string) (*domain.ContactInfo, []domain.ContactInfo) {
	emails := emailPattern.FindAllString(text, 3)
	phones := phonePattern.FindAllString(text, 3)
	names := namTitlePattern.FindAllStringSubmatch(text, 3)

	var contacts []domain.ContactInfo
	max := len(emails)
	if len(phones) > max {
		max = len(phones)
	}
	if len(names) > max {
		max = len(names)
	}
	for i := 0; i < max && i < 3; i++ {
		c := domain.ContactInfo{}
		if i < len(emails) {
			c.Email = emails[i]
		}
		if i < len(phones) {
			c.Phone = phones[i]
		}
		if i < len(names) {
			c.Name = names[i][1]
			c.Title = names[i][2]
		}
		contacts = append(contacts, c)
	}
	if len(contacts) == 0 {
		return nil, nil
	}
	return &contacts[0], contacts
}

// confidenceOf scores the extraction as the percentage of essential
// fields that resolved to something other than "Unknown".
func confidenceOf(data domain.ExtractedData) int {
	essential := []string{data.Company, data.Location, data.ProjectType, data.Budget, data.Timeline}
	found := 0
	for _, f := range essential {
		if f != unknown && f != "" {
			found++
		}
	}
	return found * 100 / len(essential)
}
