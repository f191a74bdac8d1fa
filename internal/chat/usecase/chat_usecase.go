package usecase

import (
	"context"
	"fmt"
	"strings"

	"motelaudit-backend/pkg/chroma"
	"motelaudit-backend/pkg/openai"
)

const (
	chatModel      = "gpt-4o-mini"
	embeddingModel = "text-embedding-3-small"
	defaultTopK    = 5
	maxAnswerToken = 250

	systemPrompt = "You are an analytical report assistant. Answer questions about motel daily " +
		"audit reports using only the provided context. If the context does not contain " +
		"the answer, say so. Be concise and cite the motel and date you are drawing from."
)

// Source identifies one report the answer drew from.
type Source struct {
	MotelName  string  `json:"motel_name"`
	ReportDate string  `json:"report_date"`
	Department string  `json:"department"`
	Distance   float64 `json:"distance"`
}

// Answer is the assistant reply plus the retrieved sources.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []Source `json:"sources"`
}

type vectorIndex interface {
	Query(ctx context.Context, vector []float32, topK int) ([]chroma.Match, error)
}

type embedder interface {
	CreateEmbedding(ctx context.Context, model, input string) ([]float32, openai.Usage, error)
}

type completionClient interface {
	ChatCompletion(ctx context.Context, req openai.ChatRequest) (string, openai.Usage, error)
}

// ChatUsecase answers questions over indexed reports: the question is
// embedded, the closest reports are retrieved, and a model composes the
// reply from their content. Every model call is metered.
type ChatUsecase struct {
	index    vectorIndex
	embedder embedder
	client   completionClient
	usage    openai.UsageRecorder
}

func NewChatUsecase(index vectorIndex, embedder embedder, client completionClient, usage openai.UsageRecorder) *ChatUsecase {
	return &ChatUsecase{index: index, embedder: embedder, client: client, usage: usage}
}

func (u *ChatUsecase) Query(ctx context.Context, question string, topK int) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("empty question")
	}
	if topK < 1 {
		topK = defaultTopK
	}

	vector, usage, err := u.embedder.CreateEmbedding(ctx, embeddingModel, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	u.usage.RecordUsage(embeddingModel, "embedding", usage)

	matches, err := u.index.Query(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	contextBlock, sources := buildContext(matches)

	reply, chatUsage, err := u.client.ChatCompletion(ctx, openai.ChatRequest{
		Model: chatModel,
		Messages: []openai.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextBlock, question)},
		},
		Temperature: 0.3,
		MaxTokens:   maxAnswerToken,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	u.usage.RecordUsage(chatModel, "chat", chatUsage)

	return &Answer{Text: reply, Sources: sources}, nil
}

// buildContext renders retrieved matches into the prompt context block and
// the source list returned to the caller.
func buildContext(matches []chroma.Match) (string, []Source) {
	if len(matches) == 0 {
		return "(no indexed reports matched)", []Source{}
	}

	var b strings.Builder
	sources := make([]Source, 0, len(matches))
	for i, m := range matches {
		content := m.Metadata["content"]
		if content == "" {
			content = fmt.Sprintf("Motel: %s, date: %s", m.Metadata["motel_name"], m.Metadata["report_date"])
		}
		fmt.Fprintf(&b, "[%d]\n%s\n\n", i+1, content)
		sources = append(sources, Source{
			MotelName:  m.Metadata["motel_name"],
			ReportDate: m.Metadata["report_date"],
			Department: m.Metadata["department"],
			Distance:   m.Distance,
		})
	}
	return strings.TrimSpace(b.String()), sources
}
