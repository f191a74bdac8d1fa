package textract

import (
	"bytes"
	"log"
	"strings"

	"motelaudit-backend/internal/report/domain"

	"code.sajari.com/docconv"
)

const docxMimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// extractDOCX pulls paragraph text from a word-processing document. These
// are assumed to be native text, so there is no OCR fallback; a parse
// failure yields empty text.
func extractDOCX(data []byte) (*domain.ExtractedText, error) {
	res, err := docconv.Convert(bytes.NewReader(data), docxMimeType, false)
	if err != nil {
		log.Printf("[Textract] DOCX extraction failed: %v", err)
		return &domain.ExtractedText{Text: ""}, nil
	}
	return &domain.ExtractedText{Text: strings.TrimSpace(res.Body)}, nil
}
