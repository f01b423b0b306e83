package persist

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadscout/internal/leadgen/domain"
	"leadscout/internal/leadgen/progress"
	"leadscout/internal/repository"
)

// In-memory fakes over the repository interfaces, mirroring the shape
// the real postgres package implements.

type fakeLeadRepo struct {
	leads []domain.Lead
}

func (f *fakeLeadRepo) Create(ctx context.Context, lead *domain.Lead) error {
	for _, existing := range f.leads {
		if existing.UserID == lead.UserID && existing.NormalizedURL == lead.NormalizedURL {
			return repository.ErrDuplicateLead
		}
	}
	lead.ID = "lead-" + lead.NormalizedURL
	f.leads = append(f.leads, *lead)
	return nil
}

func (f *fakeLeadRepo) ExistsByNormalizedURL(ctx context.Context, userID, normalizedURL string) (bool, error) {
	for _, l := range f.leads {
		if l.UserID == userID && l.NormalizedURL == normalizedURL {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLeadRepo) ListTitlesByPrefix(ctx context.Context, userID, prefix string, limit int) ([]repository.LeadTitle, error) {
	var out []repository.LeadTitle
	for _, l := range f.leads {
		if l.UserID == userID && strings.HasPrefix(l.Title, prefix) {
			out = append(out, repository.LeadTitle{ID: l.ID, Title: l.Title, NormalizedURL: l.NormalizedURL})
		}
	}
	return out, nil
}

func (f *fakeLeadRepo) ExistsByURLPrefix(ctx context.Context, userID, urlPrefix string) (bool, error) {
	return false, nil
}

type fakeSourceRepo struct{ created []string }

func (f *fakeSourceRepo) FindOrCreate(ctx context.Context, name, url string, sourceType domain.LeadSourceType) (*domain.LeadSource, error) {
	f.created = append(f.created, name)
	return &domain.LeadSource{ID: "src-1", Name: name, URL: url, Type: sourceType}, nil
}

type fakeTagRepo struct {
	tags     map[string]string
	attached []string
}

func (f *fakeTagRepo) FindOrCreateByName(ctx context.Context, name string, category domain.TagCategory) (*domain.Tag, error) {
	if f.tags == nil {
		f.tags = make(map[string]string)
	}
	if id, ok := f.tags[name]; ok {
		return &domain.Tag{ID: id, Name: name, Category: category}, nil
	}
	id := "tag-" + name
	f.tags[name] = id
	return &domain.Tag{ID: id, Name: name, Category: category}, nil
}

func (f *fakeTagRepo) AttachToLead(ctx context.Context, tagID, leadID string) error {
	f.attached = append(f.attached, tagID)
	return nil
}

type fakeContactRepo struct {
	contacts []domain.ContactInfo
}

func (f *fakeContactRepo) BulkCreateFromExtraction(ctx context.Context, contacts []domain.ContactInfo, leadID, userID string) error {
	f.contacts = append(f.contacts, contacts...)
	return nil
}

func newTestPersister(leads *fakeLeadRepo, tags *fakeTagRepo, contacts repository.ContactRepository, bus *progress.Bus) *Persister {
	return New(leads, &fakeSourceRepo{}, tags, contacts, bus)
}

func itemFor(url, title string, data domain.ExtractedData) Item {
	return Item{
		Hit: domain.EnrichedHit{
			RawHit: domain.RawHit{
				Source:      "rss",
				Engine:      "rss",
				URL:         url,
				URLVerified: true,
				Title:       title,
				PublishedAt: time.Now(),
			},
		},
		Data: data,
	}
}

func TestPersistAll_CreatesLeadWithDefaults(t *testing.T) {
	leads := &fakeLeadRepo{}
	p := newTestPersister(leads, &fakeTagRepo{}, nil, nil)

	cfg := domain.Config{UserID: "user-1", Keywords: []string{"hotel"}}
	out := p.PersistAll(context.Background(), cfg, "job-1", []Item{
		itemFor("https://site.tld/a", "Hotel X opens", domain.ExtractedData{Confidence: 20}),
	})

	require.Len(t, out.Leads, 1)
	lead := out.Leads[0]
	assert.Equal(t, domain.StatusNew, lead.Status)
	assert.Equal(t, domain.PriorityMedium, lead.Priority)
	assert.Equal(t, domain.ExtractionManual, lead.ExtractionMethod)
	assert.Equal(t, "Hotel X", lead.Company) // derived from title
	assert.NotEmpty(t, lead.URL)
	assert.Equal(t, "https://site.tld/a", lead.NormalizedURL)
}

func TestPersistAll_SkipsDuplicateNormalizedURL(t *testing.T) {
	leads := &fakeLeadRepo{}
	p := newTestPersister(leads, &fakeTagRepo{}, nil, nil)

	cfg := domain.Config{UserID: "user-1", Keywords: []string{"hotel"}}
	items := []Item{
		itemFor("https://site.tld/a?utm=x", "Hotel X opens", domain.ExtractedData{}),
		itemFor("https://site.tld/a?utm=y", "Hotel X opens again", domain.ExtractedData{}),
	}
	out := p.PersistAll(context.Background(), cfg, "job-1", items)

	assert.Len(t, out.Leads, 1)
	assert.Equal(t, 1, out.Duplicates)
	assert.Equal(t, "https://site.tld/a", out.Leads[0].NormalizedURL)
}

func TestPersistAll_TitleSimilarityDuplicate(t *testing.T) {
	leads := &fakeLeadRepo{}
	p := newTestPersister(leads, &fakeTagRepo{}, nil, nil)

	cfg := domain.Config{UserID: "user-1", Keywords: []string{"hotel"}}
	out := p.PersistAll(context.Background(), cfg, "job-1", []Item{
		itemFor("https://site.tld/a", "Marriott announces downtown Austin hotel project", domain.ExtractedData{}),
		itemFor("https://site.tld/b", "Marriott announces downtown Austin hotel project today", domain.ExtractedData{}),
	})

	assert.Len(t, out.Leads, 1)
	assert.Equal(t, 1, out.Duplicates)
}

func TestPersistAll_SynthesizesFallbackURL(t *testing.T) {
	leads := &fakeLeadRepo{}
	p := newTestPersister(leads, &fakeTagRepo{}, nil, nil)

	cfg := domain.Config{UserID: "user-1", Keywords: []string{"hotel"}}
	out := p.PersistAll(context.Background(), cfg, "job-1", []Item{
		itemFor("", "Hotel Y planned", domain.ExtractedData{}),
	})

	require.Len(t, out.Leads, 1)
	assert.Contains(t, out.Leads[0].URL, "https://news-search-result/")
}

func TestPersistAll_CoercesCustomColumns(t *testing.T) {
	leads := &fakeLeadRepo{}
	p := newTestPersister(leads, &fakeTagRepo{}, nil, nil)

	cfg := domain.Config{
		UserID:   "user-1",
		Keywords: []string{"hotel"},
		Columns: []domain.Column{
			{FieldKey: "total_rooms", DataType: domain.ColumnTypeNumber},
			{FieldKey: "opening", DataType: domain.ColumnTypeDate},
		},
	}
	out := p.PersistAll(context.Background(), cfg, "job-1", []Item{
		itemFor("https://site.tld/a", "Hotel X opens", domain.ExtractedData{
			Custom: map[string]string{
				"total_rooms": "120 rooms",
				"opening":     "n/a",
			},
		}),
	})

	require.Len(t, out.Leads, 1)
	custom := out.Leads[0].Custom
	require.Contains(t, custom, "total_rooms")
	assert.Equal(t, domain.ValueKindNumber, custom["total_rooms"].Kind)
	assert.Equal(t, 120.0, custom["total_rooms"].Num)
	// "n/a" is omitted entirely, not stored as a null-ish string.
	assert.NotContains(t, custom, "opening")
}

func TestPersistAll_AttachesAtMostFiveTags(t *testing.T) {
	leads := &fakeLeadRepo{}
	tags := &fakeTagRepo{}
	p := newTestPersister(leads, tags, nil, nil)

	cfg := domain.Config{UserID: "user-1", Keywords: []string{"one", "two", "three", "four"}}
	p.PersistAll(context.Background(), cfg, "job-1", []Item{
		itemFor("https://site.tld/a", "Hotel X opens", domain.ExtractedData{
			Keywords: []string{"five", "six", "seven"},
		}),
	})

	assert.LessOrEqual(t, len(tags.attached), 5)
}

func TestPersistAll_ContactsPersistedWhenRepoPresent(t *testing.T) {
	leads := &fakeLeadRepo{}
	contacts := &fakeContactRepo{}
	p := newTestPersister(leads, &fakeTagRepo{}, contacts, nil)

	cfg := domain.Config{UserID: "user-1", Keywords: []string{"hotel"}}
	p.PersistAll(context.Background(), cfg, "job-1", []Item{
		itemFor("https://site.tld/a", "Hotel X opens", domain.ExtractedData{
			Contacts: []domain.ContactInfo{
				{Name: "Jane Doe", Email: "jane@example.com"},
				{Name: "John Roe", Email: "john@example.com"},
			},
		}),
	})

	assert.Len(t, contacts.contacts, 2)
}

func TestPersistAll_ProgressIsMonotonic(t *testing.T) {
	leads := &fakeLeadRepo{}
	bus := progress.New()
	var events []progress.Event
	bus.Subscribe("job-1", func(ev progress.Event) { events = append(events, ev) })
	p := newTestPersister(leads, &fakeTagRepo{}, nil, bus)

	cfg := domain.Config{UserID: "user-1", Keywords: []string{"hotel"}}
	p.PersistAll(context.Background(), cfg, "job-1", []Item{
		itemFor("https://site.tld/a", "Hotel X opens", domain.ExtractedData{}),
		itemFor("https://site.tld/b", "Hotel Y planned", domain.ExtractedData{}),
	})

	require.Len(t, events, 2)
	assert.Equal(t, "saving", events[0].Stage)
	assert.Less(t, events[0].Progress, events[1].Progress)
}

func TestMapStatus_TotalAndIdempotent(t *testing.T) {
	cases := map[string]domain.LeadStatus{
		"proposed":           domain.StatusNew,
		"planning":           domain.StatusNew,
		"announced":          domain.StatusNew,
		"under construction": domain.StatusQualified,
		"in_progress":        domain.StatusQualified,
		"completed":          domain.StatusWon,
		"cancelled":          domain.StatusLost,
		"on hold":            domain.StatusLost,
		"":                   domain.StatusNew,
		"gibberish":          domain.StatusNew,
	}
	for raw, want := range cases {
		got := MapStatus(raw)
		assert.Equal(t, want, got, "raw=%q", raw)
		// Idempotent over repeated mapping.
		assert.Equal(t, got, MapStatus(string(got)))
	}
}

func TestDeriveSourceType(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want domain.LeadSourceType
	}{
		{"Industry RSS", "https://feeds.example.com/industry", domain.LeadSourceRSSFeed},
		{"LinkedIn", "https://www.linkedin.com/feed-item", domain.LeadSourceSocial},
		{"Indeed", "https://www.indeed.com/viewjob", domain.LeadSourceJobBoard},
		{"Crunchbase API", "https://api.crunchbase.com/v4", domain.LeadSourceAPI},
		{"Hotel News Now", "https://www.hotelnewsnow.com/article", domain.LeadSourceNewsSite},
		{"Example", "https://example.com/a", domain.LeadSourceWebsite},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DeriveSourceType(c.name, c.url), "name=%q url=%q", c.name, c.url)
	}
}
