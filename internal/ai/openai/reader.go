// Package openai implements ai.DocumentReader on top of an OpenAI-compatible
// chat completion API. Documents are converted to text locally because the
// chat endpoint does not accept PDF attachments.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/ai"
	"github.com/spigell/job-matcher/internal/logger"
	"github.com/spigell/job-matcher/internal/pdftext"
)

const (
	ProviderName = "openai"

	defaultModel = openai.GPT4oMini
	// maxDocumentRunes bounds the resume text embedded in the prompt.
	maxDocumentRunes = 4000
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config holds the chat completion backend settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// Reader sends the resume text and the instruction as one chat message.
type Reader struct {
	client chatCompleter
	model  string
	logger *zap.Logger
}

var _ ai.DocumentReader = (*Reader)(nil)

// NewReader creates a Reader for the configured OpenAI-compatible endpoint.
func NewReader(cfg *Config) (*Reader, error) {
	if cfg == nil || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}

	clientCfg := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = base
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	return &Reader{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger.WithAI(cfg.Logger, ProviderName, model),
	}, nil
}

// Model returns the configured model name.
func (r *Reader) Model() string {
	if r == nil {
		return ""
	}
	return r.model
}

// Understand implements ai.DocumentReader.
func (r *Reader) Understand(ctx context.Context, instruction string, doc *ai.Document) (string, error) {
	if r == nil || r.client == nil {
		return "", errors.New("openai reader is not initialized")
	}

	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return "", errors.New("instruction must not be empty")
	}

	content := instruction
	if doc != nil && len(doc.Data) > 0 {
		text, err := documentText(doc)
		if err != nil {
			return "", err
		}
		content = instruction + "\n\nResume text:\n" + text
	}

	req := openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: content},
		},
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := r.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai api returned no choices")
	}

	output := strings.TrimSpace(resp.Choices[0].Message.Content)
	if output == "" {
		return "", errors.New("openai api returned empty response")
	}

	r.logger.Debug("chat completion finished",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return output, nil
}

func documentText(doc *ai.Document) (string, error) {
	var text string
	if pdftext.IsPDF(doc.MimeType, doc.Data) {
		extracted, err := pdftext.Extract(doc.Data)
		if err != nil {
			return "", fmt.Errorf("read resume %q: %w", doc.Name, err)
		}
		text = extracted
	} else {
		if !utf8.Valid(doc.Data) {
			return "", fmt.Errorf("unsupported resume format %q", doc.MimeType)
		}
		text = pdftext.CleanText(string(doc.Data))
	}

	if text == "" {
		return "", fmt.Errorf("resume %q has no text", doc.Name)
	}

	runes := []rune(text)
	if len(runes) > maxDocumentRunes {
		text = string(runes[:maxDocumentRunes])
	}

	return text, nil
}

func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("chat completion error %d: %w", reqErr.HTTPStatusCode, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat completion error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	return fmt.Errorf("chat completion request failed: %w", err)
}
