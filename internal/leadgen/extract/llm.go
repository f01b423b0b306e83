package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"leadscout/internal/leadgen/domain"
	"leadscout/internal/resilience/circuitbreaker"
	"leadscout/internal/resilience/retry"
)

const (
	llmMaxChars  = 1500
	llmMaxTokens = 200
	// llmTemperature keeps extraction near-deterministic; creative
	// paraphrasing only hurts a strict-JSON field extractor.
	llmTemperature = 0.1
)

// LLM is the optional AI extraction pass. It generalizes this codebase's
// Claude/OpenAI summarizer clients (circuit breaker + retry + structured
// logging + truncation-to-budget) from "summarize to N chars" to "extract
// fields to strict JSON."
type LLM struct {
	backend        llmBackend
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config

	// Usage telemetry, shared across jobs; guarded by usageMu.
	usageMu    sync.Mutex
	calls      int64
	promptChars int64
}

// Usage reports how many extraction calls this backend has served and
// roughly how much prompt text was sent, for cost telemetry.
func (l *LLM) Usage() (calls, promptChars int64) {
	l.usageMu.Lock()
	defer l.usageMu.Unlock()
	return l.calls, l.promptChars
}

func (l *LLM) recordUsage(prompt string) {
	l.usageMu.Lock()
	defer l.usageMu.Unlock()
	l.calls++
	l.promptChars += int64(len(prompt))
}

type llmBackend interface {
	complete(ctx context.Context, prompt string) (string, error)
	name() string
}

// NewClaude builds an LLM extractor backed by Anthropic's Claude API,
// following NewClaude's summarizer construction in this codebase (same
// circuit breaker config, same client construction via option.WithAPIKey).
func NewClaude(apiKey string) *LLM {
	return &LLM{
		backend:        &claudeBackend{client: anthropic.NewClient(option.WithAPIKey(apiKey))},
		circuitBreaker: circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
	}
}

// NewOpenAI builds an LLM extractor backed by OpenAI's chat completions
// API, the alternate backend this codebase supports for summarization.
func NewOpenAI(apiKey string) *LLM {
	return &LLM{
		backend:        &openAIBackend{client: openai.NewClient(apiKey)},
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
	}
}

type claudeBackend struct {
	client anthropic.Client
}

func (b *claudeBackend) name() string { return "claude" }

func (b *claudeBackend) complete(ctx context.Context, prompt string) (string, error) {
	message, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.ModelClaudeSonnet4_5_20250929,
		MaxTokens:   llmMaxTokens,
		Temperature: anthropic.Float(llmTemperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude api error: %w", err)
	}
	if len(message.Content) == 0 {
		return "", fmt.Errorf("claude api returned empty response")
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude api returned unexpected response type")
	}
	return textBlock.Text, nil
}

type openAIBackend struct {
	client *openai.Client
}

func (b *openAIBackend) name() string { return "openai" }

func (b *openAIBackend) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       openai.GPT4oMini,
		Temperature: llmTemperature,
		MaxTokens:   llmMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai api returned empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// llmResponse is the strict-JSON shape the prompt instructs the model to
// return. Fields mirror domain.ExtractedData's sealed fields.
type llmResponse struct {
	Company       string   `json:"company"`
	Location      string   `json:"location"`
	ProjectType   string   `json:"projectType"`
	Budget        string   `json:"budget"`
	Timeline      string   `json:"timeline"`
	IndustryType  string   `json:"industryType"`
	Description   string   `json:"description"`
	RoomCount     string   `json:"roomCount"`
	SquareFootage string   `json:"squareFootage"`
	Employees     string   `json:"employees"`
	Status        string   `json:"status"`
	Priority      string   `json:"priority"`
	Keywords      []string `json:"keywords"`
}

// Extract runs the LLM pass over text and any configured custom columns,
// returning a domain.ExtractedData with AIUsed=true. On any failure
// (network, non-JSON response, circuit open) it returns an error wrapping
// ErrLLM and the
// caller keeps the pattern-pass result.
func (l *LLM) Extract(ctx context.Context, title, text string, columns []domain.Column) (domain.ExtractedData, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	requestID := uuid.New().String()
	prompt := buildPrompt(title, text, columns)
	l.recordUsage(prompt)

	var raw string
	retryErr := retry.WithBackoff(ctx, l.retryConfig, func() error {
		result, err := l.circuitBreaker.Execute(func() (interface{}, error) {
			return l.backend.complete(ctx, prompt)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("llm extractor circuit breaker open",
					slog.String("backend", l.backend.name()),
					slog.String("request_id", requestID))
				return fmt.Errorf("%w: circuit open", ErrLLM)
			}
			return err
		}
		raw = result.(string)
		return nil
	})
	if retryErr != nil {
		slog.Warn("llm extraction failed",
			slog.String("backend", l.backend.name()),
			slog.String("request_id", requestID),
			slog.Any("error", retryErr))
		return domain.ExtractedData{}, fmt.Errorf("%w: %v", ErrLLM, retryErr)
	}

	parsed, rawFields, err := parseResponse(raw)
	if err != nil {
		slog.Warn("llm returned unparseable response",
			slog.String("backend", l.backend.name()),
			slog.String("request_id", requestID))
		return domain.ExtractedData{}, fmt.Errorf("%w: %v", ErrLLM, err)
	}

	data := domain.ExtractedData{
		Company:       parsed.Company,
		Location:      parsed.Location,
		ProjectType:   parsed.ProjectType,
		Budget:        parsed.Budget,
		Timeline:      parsed.Timeline,
		IndustryType:  parsed.IndustryType,
		Description:   parsed.Description,
		RoomCount:     parsed.RoomCount,
		SquareFootage: parsed.SquareFootage,
		Employees:     parsed.Employees,
		Status:        parsed.Status,
		Priority:      parsed.Priority,
		Keywords:      parsed.Keywords,
		AIUsed:        true,
	}
	if len(columns) > 0 {
		data.Custom = customFields(rawFields, columns)
	}
	return data, nil
}

// customFields pulls each configured column's answer out of the raw LLM
// JSON object as a plain string. No type coercion happens here: the
// persister coerces each value against its Column's declared DataType,
// so the extractor stays a pure text-in/text-out stage. A missing field
// is simply absent from the returned map.
func customFields(rawFields map[string]json.RawMessage, columns []domain.Column) map[string]string {
	out := make(map[string]string, len(columns))
	for _, col := range columns {
		raw, ok := rawFields[col.FieldKey]
		if !ok {
			continue
		}
		out[col.FieldKey] = stringifyJSON(raw)
	}
	return out
}

// stringifyJSON renders a JSON scalar as the bare string the coercion
// layer expects: strings lose their quotes, numbers and booleans keep
// their literal form, anything else keeps its raw JSON text.
func stringifyJSON(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func buildPrompt(title, text string, columns []domain.Column) string {
	truncated := text
	if len(truncated) > llmMaxChars {
		truncated = truncated[:llmMaxChars]
	}

	var fieldLines strings.Builder
	for _, c := range columns {
		fmt.Fprintf(&fieldLines, "- %s (%s): %s\n", c.FieldKey, c.DataType, c.Description)
	}

	customInstructions := ""
	if fieldLines.Len() > 0 {
		customInstructions = fmt.Sprintf("\nAlso include these additional top-level JSON fields, keyed exactly as named:\n%s"+
			"Answer each as a JSON string. Dates should be ISO-8601 (YYYY-MM-DD), booleans \"true\" or \"false\". Use \"Unknown\" for any you cannot determine.\n", fieldLines.String())
	}

	return fmt.Sprintf(`Extract structured lead information from the article below. Respond with ONLY a JSON object, no markdown, no commentary.

Required JSON fields: company, location, projectType, budget, timeline, industryType, description, roomCount, squareFootage, employees, status, priority, keywords (array of strings).
Use "Unknown" for any field you cannot determine.
%s
Title: %s

Article:
%s`, customInstructions, title, truncated)
}

func parseResponse(raw string) (llmResponse, map[string]json.RawMessage, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var parsed llmResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return llmResponse{}, nil, fmt.Errorf("invalid json response: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return parsed, nil, nil
	}
	return parsed, fields, nil
}
