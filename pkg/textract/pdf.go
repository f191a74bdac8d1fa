package textract

import (
	"bytes"
	"context"
	"io"
	"log"
	"strings"

	"motelaudit-backend/internal/report/domain"
	"motelaudit-backend/pkg/openai"

	"github.com/ledongthuc/pdf"
)

// A text layer shorter than this indicates a scanned / image-only PDF.
const minNativeChars = 100

const ocrModel = "gpt-4.1-mini"

const ocrSystemPrompt = "You are an OCR assistant. Extract ALL visible text " +
	"from the uploaded motel daily report PDF. Preserve table structures " +
	"as readable text. Do NOT summarize — return full raw text."

// OCRClient transcribes scanned PDFs through a vision-capable completion
// model. Every call is metered through the usage recorder.
type OCRClient struct {
	service *openai.Service
	usage   openai.UsageRecorder
}

func NewOCRClient(service *openai.Service, usage openai.UsageRecorder) *OCRClient {
	return &OCRClient{service: service, usage: usage}
}

func (e *Extractor) extractPDF(ctx context.Context, data []byte) (*domain.ExtractedText, error) {
	text := nativePDFText(data)
	if len(strings.TrimSpace(text)) >= minNativeChars {
		return &domain.ExtractedText{Text: strings.TrimSpace(text)}, nil
	}

	log.Printf("[Textract] PDF appears to be scanned, falling back to OCR")
	if e.ocr == nil {
		return &domain.ExtractedText{Text: "", OCR: true}, nil
	}
	return &domain.ExtractedText{Text: e.ocr.transcribe(ctx, data), OCR: true}, nil
}

// nativePDFText reads the PDF text layer. The reader panics on some
// malformed files, so the whole pass is guarded.
func nativePDFText(data []byte) (text string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Textract] PDF text extraction panicked: %v", r)
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		log.Printf("[Textract] PDF open failed: %v", err)
		return ""
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		log.Printf("[Textract] PDF text extraction failed: %v", err)
		return ""
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return ""
	}
	return buf.String()
}

// transcribe uploads the PDF and asks the model for a verbatim transcript.
// Any failure yields empty text, never a partial or summarized result.
func (c *OCRClient) transcribe(ctx context.Context, data []byte) string {
	fileID, err := c.service.UploadFile(ctx, "daily_report.pdf", "application/pdf", data, "assistants")
	if err != nil {
		log.Printf("[Textract] OCR upload failed: %v", err)
		return ""
	}

	text, usage, err := c.service.ChatCompletion(ctx, openai.ChatRequest{
		Model: ocrModel,
		Messages: []openai.ChatMessage{
			{Role: "system", Content: ocrSystemPrompt},
			{Role: "user", Content: []any{
				openai.TextPart{Type: "text", Text: "Extract text from this scanned PDF:"},
				openai.FilePart{Type: "file", File: openai.FileRef{FileID: fileID}},
			}},
		},
	})
	if err != nil {
		log.Printf("[Textract] OCR completion failed: %v", err)
		return ""
	}
	if c.usage != nil {
		c.usage.RecordUsage(ocrModel, "chat", usage)
	}
	return strings.TrimSpace(text)
}
