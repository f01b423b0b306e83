package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadscout/internal/leadgen/domain"
)

func TestParseResponse_StrictJSON(t *testing.T) {
	parsed, fields, err := parseResponse(`{"company":"Acme","location":"Miami","budget":"50000000","keywords":["hotel"]}`)
	require.NoError(t, err)
	assert.Equal(t, "Acme", parsed.Company)
	assert.Equal(t, "Miami", parsed.Location)
	assert.Contains(t, fields, "company")
}

func TestParseResponse_StripsMarkdownFence(t *testing.T) {
	parsed, _, err := parseResponse("```json\n{\"company\":\"Acme\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Acme", parsed.Company)
}

func TestParseResponse_NonJSONIsError(t *testing.T) {
	_, _, err := parseResponse("not json")
	assert.Error(t, err)
}

func TestParseResponse_PartialJSONIsError(t *testing.T) {
	_, _, err := parseResponse(`{"company":"Acme", "loc`)
	assert.Error(t, err)
}

func TestStringifyJSON(t *testing.T) {
	assert.Equal(t, "hello", stringifyJSON(json.RawMessage(`"hello"`)))
	assert.Equal(t, "120", stringifyJSON(json.RawMessage(`120`)))
	assert.Equal(t, "true", stringifyJSON(json.RawMessage(`true`)))
}

func TestCustomFields_OnlyConfiguredColumns(t *testing.T) {
	raw := map[string]json.RawMessage{
		"total_rooms": json.RawMessage(`"120 rooms"`),
		"company":     json.RawMessage(`"Acme"`),
	}
	columns := []domain.Column{{FieldKey: "total_rooms", DataType: domain.ColumnTypeNumber}}

	out := customFields(raw, columns)

	assert.Equal(t, map[string]string{"total_rooms": "120 rooms"}, out)
}

func TestBuildPrompt_IncludesColumnsAndTruncates(t *testing.T) {
	long := make([]byte, llmMaxChars+500)
	for i := range long {
		long[i] = 'a'
	}
	columns := []domain.Column{
		{FieldKey: "total_rooms", DataType: domain.ColumnTypeNumber, Description: "Number of rooms"},
	}

	prompt := buildPrompt("Title", string(long), columns)

	assert.Contains(t, prompt, "total_rooms")
	assert.Contains(t, prompt, "Number of rooms")
	assert.Contains(t, prompt, `"Unknown"`)
	assert.Less(t, len(prompt), llmMaxChars+1000)
}

func TestExtractorGate(t *testing.T) {
	llm := &LLM{}
	e := New(llm)

	lowConfidence := domain.ExtractedData{Confidence: 20}
	highConfidence := domain.ExtractedData{Confidence: 80}

	assert.False(t, e.shouldCallLLM(domain.Config{UseAI: false}, lowConfidence),
		"UseAI=false must never call the LLM")
	assert.True(t, e.shouldCallLLM(domain.Config{UseAI: true}, lowConfidence))
	assert.True(t, e.shouldCallLLM(domain.Config{UseAI: true}, highConfidence),
		"without smart mode the LLM always runs when enabled")
	assert.False(t, e.shouldCallLLM(domain.Config{UseAI: true, SmartMode: true}, highConfidence),
		"smart mode skips the LLM on confident pattern results")
	assert.True(t, e.shouldCallLLM(domain.Config{UseAI: true, SmartMode: true}, lowConfidence))

	noBackend := New(nil)
	assert.False(t, noBackend.shouldCallLLM(domain.Config{UseAI: true}, lowConfidence))
}
