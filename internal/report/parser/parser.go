package parser

import (
	"context"

	"motelaudit-backend/internal/report/domain"
)

// Parser converts recovered document text into a ParsedReport. Strategies
// are interchangeable: the orchestrator only depends on this interface.
// Implementations degrade to an empty report instead of failing, so one bad
// document never aborts a run.
type Parser interface {
	Parse(ctx context.Context, text string, metadata map[string]string) (*domain.ParsedReport, error)
}
