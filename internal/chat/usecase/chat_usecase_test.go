package usecase

import (
	"context"
	"errors"
	"testing"

	"motelaudit-backend/pkg/chroma"
	"motelaudit-backend/pkg/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	matches []chroma.Match
	err     error
	lastK   int
}

func (f *fakeIndex) Query(_ context.Context, _ []float32, topK int) ([]chroma.Match, error) {
	f.lastK = topK
	return f.matches, f.err
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) CreateEmbedding(context.Context, string, string) ([]float32, openai.Usage, error) {
	if f.err != nil {
		return nil, openai.Usage{}, f.err
	}
	return []float32{0.5}, openai.Usage{PromptTokens: 8, TotalTokens: 8}, nil
}

type fakeCompletion struct {
	reply       string
	err         error
	lastRequest openai.ChatRequest
}

func (f *fakeCompletion) ChatCompletion(_ context.Context, req openai.ChatRequest) (string, openai.Usage, error) {
	f.lastRequest = req
	return f.reply, openai.Usage{PromptTokens: 100, CompletionTokens: 40, TotalTokens: 140}, f.err
}

type fakeUsage struct {
	records []string
}

func (f *fakeUsage) RecordUsage(model, operation string, _ openai.Usage) {
	f.records = append(f.records, model+"/"+operation)
}

func TestChatQueryAnswersWithSources(t *testing.T) {
	index := &fakeIndex{matches: []chroma.Match{
		{ID: "report-1", Distance: 0.12, Metadata: map[string]string{
			"motel_name":  "Sunset Inn",
			"report_date": "2025-10-09",
			"department":  "Front Desk",
			"content":     "Motel: Sunset Inn\nRevenue: 1234.50",
		}},
	}}
	completion := &fakeCompletion{reply: "Revenue was 1234.50."}
	usage := &fakeUsage{}
	uc := NewChatUsecase(index, &fakeEmbedder{}, completion, usage)

	answer, err := uc.Query(context.Background(), "What was revenue at Sunset Inn?", 0)
	require.NoError(t, err)

	assert.Equal(t, "Revenue was 1234.50.", answer.Text)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "Sunset Inn", answer.Sources[0].MotelName)
	assert.Equal(t, "2025-10-09", answer.Sources[0].ReportDate)
	assert.Equal(t, defaultTopK, index.lastK)

	assert.Equal(t, []string{
		"text-embedding-3-small/embedding",
		"gpt-4o-mini/chat",
	}, usage.records)

	// The retrieved content must reach the model.
	require.Len(t, completion.lastRequest.Messages, 2)
	assert.Contains(t, completion.lastRequest.Messages[1].Content, "Revenue: 1234.50")
}

func TestChatQueryEmptyQuestion(t *testing.T) {
	uc := NewChatUsecase(&fakeIndex{}, &fakeEmbedder{}, &fakeCompletion{}, &fakeUsage{})
	_, err := uc.Query(context.Background(), "   ", 5)
	assert.Error(t, err)
}

func TestChatQueryNoMatches(t *testing.T) {
	completion := &fakeCompletion{reply: "I have no reports matching that."}
	uc := NewChatUsecase(&fakeIndex{}, &fakeEmbedder{}, completion, &fakeUsage{})

	answer, err := uc.Query(context.Background(), "anything?", 3)
	require.NoError(t, err)
	assert.Empty(t, answer.Sources)
	assert.Contains(t, completion.lastRequest.Messages[1].Content, "no indexed reports matched")
}

func TestChatQueryEmbeddingFailure(t *testing.T) {
	uc := NewChatUsecase(&fakeIndex{}, &fakeEmbedder{err: errors.New("quota")}, &fakeCompletion{}, &fakeUsage{})
	_, err := uc.Query(context.Background(), "question", 3)
	assert.Error(t, err)
}

func TestChatQueryIndexFailure(t *testing.T) {
	index := &fakeIndex{err: errors.New("collection unavailable")}
	uc := NewChatUsecase(index, &fakeEmbedder{}, &fakeCompletion{}, &fakeUsage{})
	_, err := uc.Query(context.Background(), "question", 3)
	assert.Error(t, err)
}
