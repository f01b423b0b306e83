// Package domain holds the plain data types shared across the lead
// discovery pipeline: the job configuration, the intermediate hit/enriched
// hit/extracted-data shapes, and the entities persisted at the end
// (Lead, Contact, LeadSource, Tag, Column).
package domain

import (
	"strings"
	"time"
)

// Config describes one scrape job: what to search for, where to look, and
// how aggressively to enrich/extract.
type Config struct {
	ID         string
	UserID     string
	Keywords   []string
	Sources    []string // empty means "all registered adapters"
	MaxResults int
	Industry   string
	Location   string
	// Frequency is the scheduler's run-frequency hint ("daily", "hourly").
	// The pipeline itself never reads it; it travels with the config so
	// callers can round-trip it.
	Frequency string
	UseAI     bool
	SmartMode bool // only call the LLM when the pattern pass is low-confidence
	SinceDays int
	Columns   []Column
}

const (
	maxKeywords      = 20
	maxResultsCeil   = 1000
	defaultMaxResults = 50
)

// Validate checks the parts of a Config the pipeline cannot limp along
// without. A config with no usable keywords aborts the job before
// dispatch; an out-of-range MaxResults is clamped rather than rejected.
func (c *Config) Validate() error {
	if c.UserID == "" {
		return &ValidationError{Field: "user_id", Message: "must not be empty"}
	}
	keywords := make([]string, 0, len(c.Keywords))
	for _, kw := range c.Keywords {
		if trimmed := strings.TrimSpace(kw); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	c.Keywords = keywords
	if len(c.Keywords) == 0 {
		return &ValidationError{Field: "keywords", Message: "at least one keyword is required"}
	}
	if len(c.Keywords) > maxKeywords {
		return &ValidationError{Field: "keywords", Message: "at most 20 keywords are allowed"}
	}
	if c.MaxResults <= 0 {
		c.MaxResults = defaultMaxResults
	}
	if c.MaxResults > maxResultsCeil {
		c.MaxResults = maxResultsCeil
	}
	return nil
}

// RawHit is a single, unprocessed search result returned by a Source
// Adapter before deduplication or enrichment.
type RawHit struct {
	Source      string
	URL         string
	Title       string
	Snippet     string
	PublishedAt time.Time

	// Engine is the adapter id that produced this hit (e.g. "rss",
	// "news_api", "html_search:google").
	Engine string
	// URLVerified is false when URL is a urlkit.SynthesizeFallback
	// placeholder rather than a URL the adapter actually observed.
	URLVerified bool
	Author      string
	ImageURL    string
	APISource   string
}

// EnrichedHit is a RawHit after the Enricher has attempted to fetch and
// clean the full article body.
type EnrichedHit struct {
	RawHit
	ArticleText string
	Enriched    bool
}

// ValueKind tags the dynamic type carried by a Value.
type ValueKind int

const (
	ValueKindString ValueKind = iota
	ValueKindNumber
	ValueKindBool
	ValueKindDate
	ValueKindStringList
)

// Value is a tagged union used for the Column/custom-field system: it lets
// a Lead carry an open map of typed values without resorting to
// interface{} everywhere it's read back out.
type Value struct {
	Kind    ValueKind
	Str     string
	Num     float64
	Boolean bool
	Date    time.Time
	List    []string
}

// Native converts the tagged value into the plain Go value its kind
// implies, for JSON serialization of custom-field maps.
func (v Value) Native() interface{} {
	switch v.Kind {
	case ValueKindNumber:
		return v.Num
	case ValueKindBool:
		return v.Boolean
	case ValueKindDate:
		return v.Date.Format("2006-01-02")
	case ValueKindStringList:
		return v.List
	default:
		return v.Str
	}
}

func StringValue(s string) Value { return Value{Kind: ValueKindString, Str: s} }
func NumberValue(n float64) Value { return Value{Kind: ValueKindNumber, Num: n} }
func BoolValue(b bool) Value     { return Value{Kind: ValueKindBool, Boolean: b} }
func DateValue(t time.Time) Value { return Value{Kind: ValueKindDate, Date: t} }
func StringListValue(l []string) Value { return Value{Kind: ValueKindStringList, List: l} }

// ContactInfo holds a single extracted point of contact.
type ContactInfo struct {
	Name    string
	Title   string
	Email   string
	Phone   string
	Company string
}

// ExtractedData is the structured result of the hybrid pattern+LLM
// extraction pass run over one EnrichedHit. Fields with an obvious,
// frequently-needed shape are sealed (first-class struct fields); anything
// else the caller configured via Config.Columns lands in Custom.
type ExtractedData struct {
	Company       string
	Location      string
	ProjectType   string
	Budget        string
	Timeline      string
	IndustryType  string
	Description   string
	RoomCount     string
	SquareFootage string
	Employees     string
	// Status and Priority carry the raw extracted phrases ("planning",
	// "under construction", "urgent"); the persister maps them onto the
	// LeadStatus/LeadPriority enums.
	Status      string
	Priority    string
	Keywords    []string
	ContactInfo *ContactInfo
	Contacts      []ContactInfo
	Confidence    int
	AIUsed        bool
	// Custom holds raw, uncoerced values for the user's configured
	// columns. Coercion to each Column's DataType happens at
	// persistence time, not here.
	Custom map[string]string
}

// LeadStatus is the pipeline stage of a Lead in a user's pipeline.
type LeadStatus string

const (
	StatusNew       LeadStatus = "new"
	StatusContacted LeadStatus = "contacted"
	StatusQualified LeadStatus = "qualified"
	StatusProposal  LeadStatus = "proposal"
	StatusWon       LeadStatus = "won"
	StatusLost      LeadStatus = "lost"
	StatusArchived  LeadStatus = "archived"
)

var validLeadStatuses = map[LeadStatus]bool{
	StatusNew: true, StatusContacted: true, StatusQualified: true,
	StatusProposal: true, StatusWon: true, StatusLost: true, StatusArchived: true,
}

func (s LeadStatus) Valid() bool { return validLeadStatuses[s] }

// LeadPriority ranks how urgently a Lead should be worked.
type LeadPriority string

const (
	PriorityLow    LeadPriority = "low"
	PriorityMedium LeadPriority = "medium"
	PriorityHigh   LeadPriority = "high"
	PriorityUrgent LeadPriority = "urgent"
)

var validPriorities = map[LeadPriority]bool{
	PriorityLow: true, PriorityMedium: true, PriorityHigh: true, PriorityUrgent: true,
}

func (p LeadPriority) Valid() bool { return validPriorities[p] }

// LeadSourceType classifies where a LeadSource originated.
type LeadSourceType string

const (
	LeadSourceRSSFeed  LeadSourceType = "rss_feed"
	LeadSourceNewsSite LeadSourceType = "news_site"
	LeadSourceSocial   LeadSourceType = "social_media"
	LeadSourceJobBoard LeadSourceType = "job_board"
	LeadSourceAPI      LeadSourceType = "api"
	LeadSourceWebsite  LeadSourceType = "website"
	LeadSourceOther    LeadSourceType = "other"
)

var validLeadSourceTypes = map[LeadSourceType]bool{
	LeadSourceRSSFeed: true, LeadSourceNewsSite: true, LeadSourceSocial: true,
	LeadSourceJobBoard: true, LeadSourceAPI: true, LeadSourceWebsite: true,
	LeadSourceOther: true,
}

func (t LeadSourceType) Valid() bool { return validLeadSourceTypes[t] }

// ColumnDataType is the declared type of a user-defined custom column.
// It drives both prompt assembly (the LLM is told what shape to answer
// in) and persistence-time coercion via Coerce.
type ColumnDataType string

const (
	ColumnTypeText     ColumnDataType = "text"
	ColumnTypeEmail    ColumnDataType = "email"
	ColumnTypePhone    ColumnDataType = "phone"
	ColumnTypeURL      ColumnDataType = "url"
	ColumnTypeNumber   ColumnDataType = "number"
	ColumnTypeCurrency ColumnDataType = "currency"
	ColumnTypeBoolean  ColumnDataType = "boolean"
	ColumnTypeDate     ColumnDataType = "date"
)

var validColumnDataTypes = map[ColumnDataType]bool{
	ColumnTypeText: true, ColumnTypeEmail: true, ColumnTypePhone: true,
	ColumnTypeURL: true, ColumnTypeNumber: true, ColumnTypeCurrency: true,
	ColumnTypeBoolean: true, ColumnTypeDate: true,
}

func (t ColumnDataType) Valid() bool { return validColumnDataTypes[t] }

// ExtractionMethod records which pass produced a Lead's fields.
type ExtractionMethod string

const (
	ExtractionAI       ExtractionMethod = "ai"
	ExtractionManual   ExtractionMethod = "manual"
	ExtractionTemplate ExtractionMethod = "template"
)

// ContactType distinguishes the primary point of contact from the rest.
type ContactType string

const (
	ContactPrimary   ContactType = "primary"
	ContactSecondary ContactType = "secondary"
)

// TagCategory groups tags for display/filtering purposes.
type TagCategory string

const (
	TagCategoryIndustry TagCategory = "industry"
	TagCategoryStatus   TagCategory = "status"
	TagCategoryPriority TagCategory = "priority"
	TagCategoryLocation TagCategory = "location"
	TagCategoryCustom   TagCategory = "custom"
)

var validTagCategories = map[TagCategory]bool{
	TagCategoryIndustry: true, TagCategoryStatus: true, TagCategoryPriority: true,
	TagCategoryLocation: true, TagCategoryCustom: true,
}

func (c TagCategory) Valid() bool { return validTagCategories[c] }

// Qualification is the pipeline's own confidence classification of a Lead,
// distinct from the user-editable Status/Priority pipeline fields.
type Qualification string

const (
	QualificationUnqualified     Qualification = "unqualified"
	QualificationQualified       Qualification = "qualified"
	QualificationHighlyQualified Qualification = "highly_qualified"
)

var validQualifications = map[Qualification]bool{
	QualificationUnqualified: true, QualificationQualified: true, QualificationHighlyQualified: true,
}

func (q Qualification) Valid() bool { return validQualifications[q] }

// QualificationFor buckets a 0-100 confidence score (such as the one the
// extractor's confidenceOf computes): 75 and up is highly qualified, 40 and
// up is qualified, anything lower is unqualified.
func QualificationFor(confidence int) Qualification {
	switch {
	case confidence >= 75:
		return QualificationHighlyQualified
	case confidence >= 40:
		return QualificationQualified
	default:
		return QualificationUnqualified
	}
}

// Column is a user-defined extraction field: name, prompt hint, and type.
type Column struct {
	ID          string
	UserID      string
	FieldKey    string
	Label       string
	Description string
	DataType    ColumnDataType
	IsVisible   bool
	CreatedAt   time.Time
}

// Tag is a label attachable to many Leads. Name is stored lowercased and
// is unique per deployment; UsageCount tracks how many leads carry it.
type Tag struct {
	ID         string
	Name       string
	Category   TagCategory
	UsageCount int
	IsSystem   bool
	CreatedAt  time.Time
}

// LeadSource is the place a Lead was discovered (a feed, a search engine
// result page, a named industry site, ...).
type LeadSource struct {
	ID        string
	Name      string
	URL       string
	Type      LeadSourceType
	CreatedAt time.Time
}

// Contact is one point of contact attached to a Lead.
type Contact struct {
	ID          string
	LeadID      string
	Name        string
	Title       string
	Email       string
	Phone       string
	Company     string
	ContactType ContactType
	CreatedAt   time.Time
}

// Lead is the persisted, user-visible result of the pipeline.
type Lead struct {
	ID            string
	UserID        string
	SourceID      string
	URL           string
	NormalizedURL string
	Title         string
	Company       string
	Location      string
	ProjectType   string
	Budget        string
	Timeline      string
	IndustryType  string
	Description   string
	RoomCount     string
	SquareFootage string
	Employees     string
	Keywords      []string
	Status        LeadStatus
	Priority      LeadPriority
	Score         int
	Confidence    int
	ExtractionMethod ExtractionMethod
	Qualification Qualification
	ContactInfo   *ContactInfo
	Custom        map[string]Value
	PublishedAt   time.Time
	ScrapedAt     time.Time
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate enforces the Lead invariants before persistence: bounded
// Score/Confidence, a non-empty URL, and a non-empty owning user. Unset
// Status/Priority/Qualification fall back to their defaults.
func (l *Lead) Validate() error {
	if l.UserID == "" {
		return &ValidationError{Field: "user_id", Message: "must not be empty"}
	}
	if l.URL == "" {
		return &ValidationError{Field: "url", Message: "must not be empty"}
	}
	if l.Status == "" {
		l.Status = StatusNew
	}
	if !l.Status.Valid() {
		return &ValidationError{Field: "status", Message: "unknown status: " + string(l.Status)}
	}
	if l.Priority == "" {
		l.Priority = PriorityMedium
	}
	if !l.Priority.Valid() {
		return &ValidationError{Field: "priority", Message: "unknown priority: " + string(l.Priority)}
	}
	if l.Score < 0 || l.Score > 100 {
		return &ValidationError{Field: "score", Message: "must be between 0 and 100"}
	}
	if l.Confidence < 0 || l.Confidence > 100 {
		return &ValidationError{Field: "confidence", Message: "must be between 0 and 100"}
	}
	if l.Qualification == "" {
		l.Qualification = QualificationFor(l.Confidence)
	}
	if !l.Qualification.Valid() {
		return &ValidationError{Field: "qualification", Message: "unknown qualification: " + string(l.Qualification)}
	}
	return nil
}
