package usecase

import (
	"context"

	"motelaudit-backend/internal/report/domain"
	"motelaudit-backend/pkg/chroma"
	"motelaudit-backend/pkg/openai"
)

// MailSource yields filtered mailbox messages with attachments downloaded.
type MailSource interface {
	FetchRecent(ctx context.Context, limit int, query string) ([]*domain.InboundEmail, int, error)
	FetchAll(ctx context.Context, maxPages int, query string) ([]*domain.InboundEmail, int, error)
}

// TextExtractor recovers plain text from a document attachment.
type TextExtractor interface {
	Extract(ctx context.Context, att *domain.InboundAttachment) (*domain.ExtractedText, error)
}

// VectorIndex is the report search index.
type VectorIndex interface {
	UpsertReport(ctx context.Context, id string, vector []float32, metadata map[string]any, content string) error
	Has(ctx context.Context, id string) (bool, error)
	ExistingIDs(ctx context.Context) (map[string]struct{}, error)
	Query(ctx context.Context, vector []float32, topK int) ([]chroma.Match, error)
	Count(ctx context.Context) (int, error)
}

// Embedder turns text into a vector, reporting token usage.
type Embedder interface {
	CreateEmbedding(ctx context.Context, model, input string) ([]float32, openai.Usage, error)
}
