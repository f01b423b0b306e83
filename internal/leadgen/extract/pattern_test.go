package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"leadscout/internal/leadgen/domain"
)

func TestPattern_ExtractsEssentialFields(t *testing.T) {
	text := `Marriott International announced a $45 million renovation project in Austin, TX,
slated for completion in Q3 2026. The 220-room property spans 150,000 sq ft.
Contact Jane Doe, Director at jane.doe@example.com or (512) 555-0199.`

	data := Pattern("Marriott renovation announced", text, []string{"renovation"})

	assert.Equal(t, "Marriott", data.Company)
	assert.Equal(t, "Austin, TX", data.Location)
	assert.Equal(t, "renovation", data.ProjectType)
	assert.Equal(t, "$45000000", data.Budget)
	assert.Equal(t, "Q3 2026", data.Timeline)
	assert.Equal(t, "220", data.RoomCount)
	assert.Contains(t, data.Keywords, "renovation")
	assert.NotNil(t, data.ContactInfo)
	assert.Equal(t, "jane.doe@example.com", data.ContactInfo.Email)
	assert.True(t, data.Confidence > 50)
}

func TestPattern_UnknownFieldsWhenAbsent(t *testing.T) {
	data := Pattern("Generic headline", "Nothing useful here.", nil)

	assert.Equal(t, "Unknown", data.Company)
	assert.Equal(t, "Unknown", data.Location)
	assert.Equal(t, 0, data.Confidence)
}

func TestMerge_LLMOverridesOnlyNonUnknown(t *testing.T) {
	pattern := domain.ExtractedData{Company: "Marriott", Location: "Austin, TX"}
	llm := domain.ExtractedData{Company: "Unknown", Location: "Denver, CO"}

	merged := Merge(pattern, &llm)

	assert.Equal(t, "Marriott", merged.Company)
	assert.Equal(t, "Denver, CO", merged.Location)
	assert.True(t, merged.AIUsed)
}

func TestMerge_NilLLMKeepsPattern(t *testing.T) {
	pattern := domain.ExtractedData{Company: "Hyatt", Confidence: 40}

	merged := Merge(pattern, nil)

	assert.Equal(t, pattern, merged)
	assert.False(t, merged.AIUsed)
}

func TestMerge_CustomFieldsCarriedFromLLM(t *testing.T) {
	pattern := domain.ExtractedData{Company: "Hyatt"}
	llm := domain.ExtractedData{Custom: map[string]string{"total_rooms": "120 rooms"}}

	merged := Merge(pattern, &llm)

	assert.Equal(t, "120 rooms", merged.Custom["total_rooms"])
}
