// Package ocrprocessor provides vision-model OCR extraction for scanned
// PDF pages.
//
// client.go implements the VisionClient that wraps the OpenAI-compatible
// chat completions API for table OCR. It composes:
//   - prompt.go: system and per-page user prompts
//   - core.GetHTTPClient: HTTP client factory
//   - logging.Logger: structured logging
package ocrprocessor

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"go_extractor/core"
	"go_extractor/logging"
)

// Common errors for OCR client operations.
var (
	// ErrMissingAPIKey indicates no API key is configured for the OCR service.
	ErrMissingAPIKey = errors.New("ocrprocessor: OCR API key not configured")

	// ErrNilLogger indicates the logger is nil.
	ErrNilLogger = errors.New("ocrprocessor: logger cannot be nil")

	// ErrEmptyImage indicates zero-length image data was submitted.
	ErrEmptyImage = errors.New("ocrprocessor: image data is empty")

	// ErrNoChoices indicates the model returned no completion choices.
	ErrNoChoices = errors.New("ocrprocessor: no response choices returned")
)

// VisionClient calls a vision-capable chat model to read a table off a
// page image.
//
// Thread-Safety:
//   - VisionClient is safe for concurrent use
//   - the underlying openai client handles concurrency internally
type VisionClient struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    *logging.Logger
}

// NewVisionClient creates a vision OCR client from the core configuration.
//
// The API base URL override in cfg allows pointing the client at any
// OpenAI-compatible endpoint, including a local test server.
func NewVisionClient(cfg *core.Config, logger *logging.Logger) (*VisionClient, error) {
	if logger == nil {
		return nil, ErrNilLogger
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, ErrMissingAPIKey
	}

	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIAPIBaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAIAPIBaseURL
	}
	clientConfig.HTTPClient = core.GetHTTPClient(cfg.OCRTimeout)

	return &VisionClient{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     cfg.OCRModel,
		maxTokens: cfg.OCRMaxTokens,
		logger:    logger.Named("vision-client"),
	}, nil
}

// ExtractTable sends one page image to the vision model and returns the
// raw completion text. The caller is responsible for parsing the JSON
// payload out of it.
//
// Parameters:
//   - ctx: context for cancellation/timeout
//   - pngData: the page image, PNG-encoded
//   - pageIndex: 0-based page index, used in the prompt and logs
//   - strict: selects the tightened retry prompt
func (c *VisionClient) ExtractTable(ctx context.Context, pngData []byte, pageIndex int, strict bool) (string, error) {
	if len(pngData) == 0 {
		return "", ErrEmptyImage
	}

	start := time.Now()
	log := c.logger.With(
		zap.Int("page", pageIndex),
		zap.Int("image_size_bytes", len(pngData)),
		zap.Bool("strict", strict),
	)
	log.Debug("sending page image to vision model")

	system := systemPrompt
	if strict {
		system = strictSystemPrompt
	}
	dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: system,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: buildUserPrompt(pageIndex, strict),
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURI,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ocrprocessor: vision model request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	content := resp.Choices[0].Message.Content
	log.Debug("vision model responded",
		zap.Int("response_length", len(content)),
		zap.Duration("elapsed", time.Since(start)))

	return content, nil
}
