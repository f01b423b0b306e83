package worker

import (
	"log/slog"
	"strings"

	"leadscout/internal/pkg/config"
)

// LeadgenConfig gathers everything the scraping pipeline reads from the
// environment: provider API keys (absence disables the adapter, silently
// except for an info log), feed and industry-site lists, the User-Agent
// override, and the optional scrape proxy. Loading is fail-open like
// LoadConfigFromEnv: a malformed value falls back to the default with a
// warning rather than refusing to start.
type LeadgenConfig struct {
	// LLM extraction pass.
	LLMProvider     string // "claude" or "openai"
	AnthropicAPIKey string
	OpenAIAPIKey    string
	DeepSeekAPIKey  string
	SmartExtraction bool

	// Keyed search providers. Empty key = adapter disabled.
	UsePremiumAPIs  bool
	NewsAPIKey      string
	BingNewsKey     string
	GoogleCSEKey    string
	GoogleCSEID     string
	SerpAPIKey      string
	CrunchbaseKey   string
	BusinessWireKey string
	SECEdgarKey     string
	YelpKey         string

	// Fetch behavior.
	UserAgent         string
	ScrapyCloudAPIKey string

	// Source lists.
	RSSFeeds            []string
	IndustrySiteURLs    []string
	DisabledHTMLEngines map[string]bool
	ProbeURLs           []string

	// Optional YAML file overriding the built-in HTML search selector
	// tables.
	SelectorsFile string
}

// LoadLeadgenConfigFromEnv reads the pipeline's environment surface.
func LoadLeadgenConfigFromEnv(logger *slog.Logger) LeadgenConfig {
	cfg := LeadgenConfig{
		LLMProvider:     config.LoadEnvString("EXTRACTOR_LLM_TYPE", "claude"),
		AnthropicAPIKey: config.LoadEnvString("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    config.LoadEnvString("OPENAI_API_KEY", ""),
		DeepSeekAPIKey:  config.LoadEnvString("DEEPSEEK_API_KEY", ""),

		NewsAPIKey:      config.LoadEnvString("NEWS_API_KEY", ""),
		BingNewsKey:     config.LoadEnvString("BING_NEWS_KEY", ""),
		GoogleCSEKey:    config.LoadEnvString("GOOGLE_CSE_KEY", ""),
		GoogleCSEID:     config.LoadEnvString("GOOGLE_CSE_ID", ""),
		SerpAPIKey:      config.LoadEnvString("SERP_API_KEY", ""),
		CrunchbaseKey:   config.LoadEnvString("CRUNCHBASE_KEY", ""),
		BusinessWireKey: config.LoadEnvString("BUSINESS_WIRE_KEY", ""),
		SECEdgarKey:     config.LoadEnvString("SEC_EDGAR_KEY", ""),
		YelpKey:         config.LoadEnvString("YELP_KEY", ""),

		UserAgent:         config.LoadEnvString("USER_AGENT", ""),
		ScrapyCloudAPIKey: config.LoadEnvString("SCRAPY_CLOUD_API_KEY", ""),

		RSSFeeds:         splitList(config.LoadEnvString("LEADGEN_RSS_FEEDS", "")),
		IndustrySiteURLs: splitList(config.LoadEnvString("LEADGEN_INDUSTRY_SITES", "")),
		ProbeURLs: splitList(config.LoadEnvString("LEADGEN_PROBE_URLS",
			"https://www.google.com,https://www.bing.com")),
		SelectorsFile: config.LoadEnvString("LEADGEN_SELECTORS_FILE", ""),
	}

	smartResult := config.LoadEnvBool("SMART_EXTRACTION", false)
	logWarnings(logger, smartResult.Warnings)
	cfg.SmartExtraction = smartResult.Value.(bool)

	premiumResult := config.LoadEnvBool("USE_PREMIUM_APIS", false)
	logWarnings(logger, premiumResult.Warnings)
	cfg.UsePremiumAPIs = premiumResult.Value.(bool)

	cfg.DisabledHTMLEngines = make(map[string]bool)
	for _, name := range splitList(config.LoadEnvString("LEADGEN_DISABLED_HTML_ENGINES", "")) {
		cfg.DisabledHTMLEngines[name] = true
	}

	return cfg
}

// LLMAPIKey resolves the key for the configured provider. A DeepSeek
// key works as an OpenAI-compatible fallback.
func (c LeadgenConfig) LLMAPIKey() string {
	switch c.LLMProvider {
	case "openai":
		if c.OpenAIAPIKey != "" {
			return c.OpenAIAPIKey
		}
		return c.DeepSeekAPIKey
	default:
		return c.AnthropicAPIKey
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func logWarnings(logger *slog.Logger, warnings []string) {
	for _, w := range warnings {
		logger.Warn("leadgen configuration fallback", slog.String("warning", w))
	}
}
