package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

const baseURL = "https://api.openai.com/v1"

// Service is a thin client for the completion, embedding, and file
// endpoints. Per-call timeouts are enforced server-side; callers pass a
// context for local cancellation.
type Service struct {
	apiKey string
	client *http.Client
}

func NewService(apiKey string) *Service {
	return &Service{
		apiKey: apiKey,
		client: &http.Client{},
	}
}

// Usage mirrors the token counters returned by the API.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// UsageRecorder receives one record per billable model call.
type UsageRecorder interface {
	RecordUsage(model, operation string, usage Usage)
}

// ChatMessage content is either a plain string or a list of content parts.
type ChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// TextPart is a text segment of a multi-part user message.
type TextPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// FilePart references a previously uploaded file in a user message.
type FilePart struct {
	Type string  `json:"type"`
	File FileRef `json:"file"`
}

type FileRef struct {
	FileID string `json:"file_id"`
}

type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// ChatCompletion runs one chat request and returns the completion text with
// its token usage.
func (s *Service) ChatCompletion(ctx context.Context, req ChatRequest) (string, Usage, error) {
	var resp chatResponse
	if err := s.postJSON(ctx, "/chat/completions", req, &resp); err != nil {
		return "", Usage{}, err
	}
	if len(resp.Choices) == 0 {
		return "", resp.Usage, fmt.Errorf("no completion returned")
	}
	return resp.Choices[0].Message.Content, resp.Usage, nil
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Usage Usage `json:"usage"`
}

// CreateEmbedding embeds one text and returns the vector with token usage.
func (s *Service) CreateEmbedding(ctx context.Context, model, input string) ([]float32, Usage, error) {
	var resp embeddingResponse
	if err := s.postJSON(ctx, "/embeddings", embeddingRequest{Model: model, Input: input}, &resp); err != nil {
		return nil, Usage{}, err
	}
	if len(resp.Data) == 0 {
		return nil, resp.Usage, fmt.Errorf("no embedding returned")
	}
	return resp.Data[0].Embedding, resp.Usage, nil
}

// UploadFile uploads a document for use in a subsequent chat request and
// returns the file id.
func (s *Service) UploadFile(ctx context.Context, filename, mimeType string, data []byte, purpose string) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if err := w.WriteField("purpose", purpose); err != nil {
		return "", err
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", baseURL+"/files", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI file upload error: %s", string(respBody))
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", fmt.Errorf("no file id returned")
	}
	return result.ID, nil
}

func (s *Service) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("OpenAI API error: %s", string(respBody))
	}
	return json.Unmarshal(respBody, out)
}
