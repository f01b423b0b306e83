package extract

import "leadscout/internal/leadgen/domain"

// Merge combines a pattern-pass result with an (optional) LLM-pass
// result: LLM-provided fields win only when they are non-empty and not
// "Unknown", otherwise the pattern result is kept. The override is
// one-way: the LLM never downgrades a field the pattern pass already
// resolved with a better value.
func Merge(pattern domain.ExtractedData, llm *domain.ExtractedData) domain.ExtractedData {
	if llm == nil {
		return pattern
	}

	result := pattern
	result.Company = preferLLM(pattern.Company, llm.Company)
	result.Location = preferLLM(pattern.Location, llm.Location)
	result.ProjectType = preferLLM(pattern.ProjectType, llm.ProjectType)
	result.Budget = preferLLM(pattern.Budget, llm.Budget)
	result.Timeline = preferLLM(pattern.Timeline, llm.Timeline)
	result.IndustryType = preferLLM(pattern.IndustryType, llm.IndustryType)
	result.Description = preferLLM(pattern.Description, llm.Description)
	result.RoomCount = preferLLM(pattern.RoomCount, llm.RoomCount)
	result.SquareFootage = preferLLM(pattern.SquareFootage, llm.SquareFootage)
	result.Employees = preferLLM(pattern.Employees, llm.Employees)
	result.Status = preferLLM(pattern.Status, llm.Status)
	result.Priority = preferLLM(pattern.Priority, llm.Priority)
	if len(llm.Keywords) > 0 {
		result.Keywords = mergeUnique(pattern.Keywords, llm.Keywords)
	}
	if len(llm.Custom) > 0 {
		result.Custom = llm.Custom
	}
	result.AIUsed = true
	result.Confidence = confidenceOf(result)
	return result
}

func preferLLM(patternVal, llmVal string) string {
	if llmVal != "" && llmVal != unknown {
		return llmVal
	}
	return patternVal
}

func mergeUnique(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, v := range append(append([]string{}, a...), b...) {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
