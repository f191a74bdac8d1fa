package parser

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"motelaudit-backend/internal/report/domain"
	"motelaudit-backend/pkg/openai"
)

const parseModel = "gpt-4.1-mini"

const parseSystemPrompt = "You are an expert OCR text parser for motel daily reports. " +
	"Return ONLY a valid JSON object with the following keys:\n" +
	"- property_name\n- report_date\n- department\n- auditor\n" +
	"- revenue\n- adr\n- occupancy\n- vacant_clean\n- vacant_dirty\n- out_of_order_rooms_storage\n" +
	"- vacant_dirty_rooms (list of {room_number, reason, days, action})\n" +
	"- out_of_order_rooms (list of {room_number, reason, days, action})\n" +
	"- comp_rooms (list of {room_number, notes})\n" +
	"- incidents (list of {description})\n\n" +
	"Do NOT include any explanations, prose, or markdown — only pure JSON."

// CompletionClient is the slice of the model service this parser needs.
type CompletionClient interface {
	ChatCompletion(ctx context.Context, req openai.ChatRequest) (string, openai.Usage, error)
}

// OpenAIParser delegates structuring to a completion model. The raw
// completion is scanned for the first brace-balanced JSON object so
// incidental prose or markdown fences don't break decoding. Any failure
// degrades to the canonical empty report.
type OpenAIParser struct {
	client CompletionClient
	usage  openai.UsageRecorder
}

func NewOpenAIParser(client CompletionClient, usage openai.UsageRecorder) *OpenAIParser {
	return &OpenAIParser{client: client, usage: usage}
}

func (p *OpenAIParser) Parse(ctx context.Context, text string, _ map[string]string) (*domain.ParsedReport, error) {
	raw, usage, err := p.client.ChatCompletion(ctx, openai.ChatRequest{
		Model:       parseModel,
		Temperature: 0.2,
		Messages: []openai.ChatMessage{
			{Role: "system", Content: parseSystemPrompt},
			{Role: "user", Content: "Parse and return structured JSON from the following motel daily report text:\n\n" + text},
		},
	})
	if err != nil {
		log.Printf("[Parser] Completion failed: %v", err)
		return domain.EmptyParsedReport(), nil
	}
	// Only completed calls are billable; failed requests return no counters.
	if p.usage != nil {
		p.usage.RecordUsage(parseModel, "chat", usage)
	}

	jsonStr := extractJSONObject(raw)
	if jsonStr == "" {
		log.Printf("[Parser] No JSON object in completion output")
		return domain.EmptyParsedReport(), nil
	}

	report := domain.EmptyParsedReport()
	if err := json.Unmarshal([]byte(jsonStr), report); err != nil {
		log.Printf("[Parser] JSON decoding failed: %v", err)
		return domain.EmptyParsedReport(), nil
	}
	normalizeCollections(report)
	return report, nil
}

// extractJSONObject returns the first brace-balanced object in the text,
// tracking string literals and escapes so braces inside values don't skew
// the depth count.
func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == '{':
			depth++
		case !inString && c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// normalizeCollections keeps "absent" and "empty" distinct from nil slices
// after decoding, so downstream code can range without nil checks.
func normalizeCollections(r *domain.ParsedReport) {
	if r.VacantDirtyRooms == nil {
		r.VacantDirtyRooms = []domain.ParsedRoom{}
	}
	if r.OutOfOrderRooms == nil {
		r.OutOfOrderRooms = []domain.ParsedRoom{}
	}
	if r.CompRooms == nil {
		r.CompRooms = []domain.ParsedCompRoom{}
	}
	if r.Incidents == nil {
		r.Incidents = []domain.ParsedIncident{}
	}
}
