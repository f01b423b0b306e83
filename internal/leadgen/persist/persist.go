// Package persist turns extracted hits into stored Lead rows, with the
// per-user duplicate checks, enum mapping, custom-column coercion, tag
// linking, and contact rows the lead schema calls for. It follows the
// same "one bad row never aborts the batch" discipline the rest of the
// pipeline uses for adapters and hits.
package persist

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"leadscout/internal/leadgen/dedup"
	"leadscout/internal/leadgen/domain"
	"leadscout/internal/leadgen/progress"
	"leadscout/internal/leadgen/urlkit"
	"leadscout/internal/observability/metrics"
	"leadscout/internal/repository"
)

const (
	maxTagsPerLead     = 5
	maxContactsPerLead = 3
	// titlePrefixLen is how much of a title the similarity duplicate
	// check uses to pre-filter candidate rows.
	titlePrefixLen = 20

	titleSimilarityThreshold = 0.8
)

// Item pairs an enriched hit with its extraction result.
type Item struct {
	Hit  domain.EnrichedHit
	Data domain.ExtractedData
}

// Outcome summarizes one PersistAll run.
type Outcome struct {
	Leads      []domain.Lead
	Duplicates int
	Errors     []string
}

// Persister writes leads and their satellite rows. The contact repository
// is optional: when nil, the primary contact is folded into the lead's
// contact_info JSON instead of getting its own rows.
type Persister struct {
	leads    repository.LeadRepository
	sources  repository.LeadSourceRepository
	tags     repository.TagRepository
	contacts repository.ContactRepository
	bus      *progress.Bus
}

func New(leads repository.LeadRepository, sources repository.LeadSourceRepository,
	tags repository.TagRepository, contacts repository.ContactRepository, bus *progress.Bus) *Persister {
	return &Persister{leads: leads, sources: sources, tags: tags, contacts: contacts, bus: bus}
}

// PersistAll stores every item, skipping duplicates and logging row-level
// failures without aborting the batch. Progress events are emitted per
// item with monotonically increasing progress.
func (p *Persister) PersistAll(ctx context.Context, cfg domain.Config, jobID string, items []Item) Outcome {
	var out Outcome
	for i, item := range items {
		lead, err := p.persistOne(ctx, cfg, item)
		switch {
		case errors.Is(err, repository.ErrDuplicateLead):
			out.Duplicates++
			metrics.RecordLeadPersisted("duplicate")
		case err != nil:
			metrics.RecordLeadPersisted("error")
			out.Errors = append(out.Errors, item.Hit.Source+": "+err.Error())
			slog.Warn("persist: lead rejected",
				slog.String("job_id", jobID),
				slog.String("url", item.Hit.URL),
				slog.String("title", item.Hit.Title),
				slog.Any("error", err))
		case lead != nil:
			out.Leads = append(out.Leads, *lead)
			metrics.RecordLeadPersisted("saved")
		}

		p.publish(jobID, i+1, len(items))
	}
	return out
}

func (p *Persister) persistOne(ctx context.Context, cfg domain.Config, item Item) (*domain.Lead, error) {
	hit, data := item.Hit, item.Data

	finalURL := hit.URL
	if finalURL == "" || !urlkit.IsArticleURL(finalURL) {
		finalURL = urlkit.SynthesizeFallback(hit.Title, hit.Source)
	}
	normalized := urlkit.Normalize(finalURL)

	dup, err := p.isDuplicate(ctx, cfg.UserID, normalized, hit.Title)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, repository.ErrDuplicateLead
	}

	source, err := p.sources.FindOrCreate(ctx, sourceNameOf(hit), originOf(finalURL), DeriveSourceType(hit.Source, finalURL))
	if err != nil {
		return nil, err
	}

	lead := p.buildLead(cfg, hit, data, source.ID, finalURL, normalized)
	if err := lead.Validate(); err != nil {
		return nil, err
	}
	if err := p.leads.Create(ctx, lead); err != nil {
		return nil, err
	}

	p.attachTags(ctx, cfg, data, lead)
	p.persistContacts(ctx, cfg.UserID, data, lead)
	return lead, nil
}

// isDuplicate runs the three-tier per-user check: exact normalized URL,
// title similarity against leads sharing a title prefix, then URL-prefix
// match. The unique index behind LeadRepository.Create still backstops
// races between concurrent jobs.
func (p *Persister) isDuplicate(ctx context.Context, userID, normalizedURL, title string) (bool, error) {
	exists, err := p.leads.ExistsByNormalizedURL(ctx, userID, normalizedURL)
	if err != nil || exists {
		return exists, err
	}

	prefix := strings.TrimSpace(title)
	if len(prefix) > titlePrefixLen {
		prefix = prefix[:titlePrefixLen]
	}
	if prefix != "" {
		candidates, err := p.leads.ListTitlesByPrefix(ctx, userID, prefix, 50)
		if err != nil {
			return false, err
		}
		for _, c := range candidates {
			if dedup.TitleSimilarity(title, c.Title) >= titleSimilarityThreshold {
				return true, nil
			}
		}
	}

	return p.leads.ExistsByURLPrefix(ctx, userID, normalizedURL)
}

func (p *Persister) buildLead(cfg domain.Config, hit domain.EnrichedHit, data domain.ExtractedData,
	sourceID, finalURL, normalized string) *domain.Lead {

	company := orUnknown(data.Company)
	if company == "Unknown" {
		if derived := companyFromTitle(hit.Title); derived != "" {
			company = derived
		}
	}

	description := data.Description
	if description == "" {
		description = hit.Snippet
	}

	method := domain.ExtractionManual
	if data.AIUsed {
		method = domain.ExtractionAI
	}

	lead := &domain.Lead{
		UserID:           cfg.UserID,
		SourceID:         sourceID,
		URL:              finalURL,
		NormalizedURL:    normalized,
		Title:            hit.Title,
		Company:          company,
		Location:         blankUnknown(data.Location),
		ProjectType:      blankUnknown(data.ProjectType),
		Budget:           blankUnknown(data.Budget),
		Timeline:         blankUnknown(data.Timeline),
		IndustryType:     firstNonEmpty(blankUnknown(data.IndustryType), cfg.Industry),
		Description:      description,
		RoomCount:        blankUnknown(data.RoomCount),
		SquareFootage:    blankUnknown(data.SquareFootage),
		Employees:        blankUnknown(data.Employees),
		Keywords:         mergeKeywords(cfg.Keywords, data.Keywords),
		Status:           MapStatus(data.Status),
		Priority:         MapPriority(data.Priority),
		Score:            data.Confidence,
		Confidence:       data.Confidence,
		ExtractionMethod: method,
		Qualification:    domain.QualificationFor(data.Confidence),
		ContactInfo:      data.ContactInfo,
		Custom:           coerceCustom(data.Custom, cfg.Columns),
		PublishedAt:      hit.PublishedAt,
		ScrapedAt:        time.Now(),
	}
	return lead
}

// coerceCustom applies each column's declared data type to the raw
// extracted value. Values that fail coercion (or are "Unknown"-style
// markers) are omitted entirely rather than stored as nulls.
func coerceCustom(raw map[string]string, columns []domain.Column) map[string]domain.Value {
	if len(raw) == 0 || len(columns) == 0 {
		return nil
	}
	out := make(map[string]domain.Value, len(columns))
	for _, col := range columns {
		value, ok := raw[col.FieldKey]
		if !ok {
			continue
		}
		coerced, ok := domain.Coerce(value, col.DataType)
		if !ok {
			continue
		}
		out[col.FieldKey] = coerced
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (p *Persister) attachTags(ctx context.Context, cfg domain.Config, data domain.ExtractedData, lead *domain.Lead) {
	names := mergeKeywords(cfg.Keywords, data.Keywords)
	if len(names) > maxTagsPerLead {
		names = names[:maxTagsPerLead]
	}
	for _, name := range names {
		tag, err := p.tags.FindOrCreateByName(ctx, name, domain.TagCategoryCustom)
		if err != nil {
			slog.Debug("persist: tag find-or-create failed", slog.String("tag", name), slog.Any("error", err))
			continue
		}
		if err := p.tags.AttachToLead(ctx, tag.ID, lead.ID); err != nil {
			slog.Debug("persist: tag attach failed", slog.String("tag", name), slog.Any("error", err))
		}
	}
}

// persistContacts writes up to maxContactsPerLead contact rows. Without a
// contact repository the primary contact is already inlined in the
// lead's contact_info, so there is nothing left to do.
func (p *Persister) persistContacts(ctx context.Context, userID string, data domain.ExtractedData, lead *domain.Lead) {
	if p.contacts == nil || len(data.Contacts) == 0 {
		return
	}
	contacts := data.Contacts
	if len(contacts) > maxContactsPerLead {
		contacts = contacts[:maxContactsPerLead]
	}
	if err := p.contacts.BulkCreateFromExtraction(ctx, contacts, lead.ID, userID); err != nil {
		slog.Warn("persist: contact rows failed, contact_info retains primary",
			slog.String("lead_id", lead.ID), slog.Any("error", err))
	}
}

func (p *Persister) publish(jobID string, done, total int) {
	if p.bus == nil {
		return
	}
	p.bus.Publish(progress.Event{
		JobID:    jobID,
		Stage:    "saving",
		Progress: done,
		Total:    total,
		Message:  "saving leads",
	})
}

func mergeKeywords(configured, extracted []string) []string {
	seen := make(map[string]bool, len(configured)+len(extracted))
	var out []string
	for _, kw := range append(append([]string{}, extracted...), configured...) {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

func blankUnknown(s string) string {
	if s == "Unknown" {
		return ""
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// companyFromTitle guesses a company name from the leading capitalized
// words of a headline, the way "Marriott Plans Austin Expansion" names
// its subject first.
func companyFromTitle(title string) string {
	words := strings.Fields(title)
	var lead []string
	for _, w := range words {
		r := []rune(w)
		if len(r) == 0 || !(r[0] >= 'A' && r[0] <= 'Z') {
			break
		}
		lead = append(lead, w)
		if len(lead) == 3 {
			break
		}
	}
	if len(lead) == 0 {
		return ""
	}
	return strings.Join(lead, " ")
}
