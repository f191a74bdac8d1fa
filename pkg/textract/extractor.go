package textract

import (
	"context"
	"fmt"
	"strings"

	"motelaudit-backend/internal/report/domain"
)

// Extractor recovers plain text from document attachments. PDFs try the
// native text layer first and fall back to model-based OCR for scanned
// documents; DOCX files are assumed to carry native text.
type Extractor struct {
	ocr *OCRClient
}

func NewExtractor(ocr *OCRClient) *Extractor {
	return &Extractor{ocr: ocr}
}

func (e *Extractor) Extract(ctx context.Context, att *domain.InboundAttachment) (*domain.ExtractedText, error) {
	fn := strings.ToLower(att.Filename)
	mt := strings.ToLower(att.MimeType)

	switch {
	case strings.HasSuffix(fn, ".pdf") || strings.Contains(mt, "pdf"):
		return e.extractPDF(ctx, att.Data)
	case strings.HasSuffix(fn, ".docx") || strings.Contains(mt, "officedocument.wordprocessingml"):
		return extractDOCX(att.Data)
	default:
		return nil, fmt.Errorf("unsupported attachment type: %s (%s)", att.Filename, att.MimeType)
	}
}
