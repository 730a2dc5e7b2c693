package service

import (
	"context"
	"fmt"
	"strings"

	"resume-chatbot/pkg/config"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// LLMService wraps the Gemini API for the two external model calls the
// pipeline makes: query embedding and answer generation.
type LLMService struct {
	client *genai.Client
	config *config.GeminiConfig
	logger *zap.Logger
}

func NewLLMService(ctx context.Context, cfg *config.GeminiConfig, logger *zap.Logger) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &LLMService{
		client: client,
		config: cfg,
		logger: logger,
	}, nil
}

// Embed converts text into a fixed-dimension vector. A dimension mismatch
// between the provider response and the configured store dimension is a
// configuration error, not something to retry.
func (s *LLMService) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &EmbeddingError{Err: fmt.Errorf("text is empty")}
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	dim := s.config.EmbeddingDim
	resp, err := s.client.Models.EmbedContent(ctx, s.config.EmbeddingModel,
		genai.Text(text),
		&genai.EmbedContentConfig{OutputDimensionality: &dim},
	)
	if err != nil {
		return nil, &EmbeddingError{Err: err}
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, &EmbeddingError{Err: fmt.Errorf("empty embedding response")}
	}

	values := resp.Embeddings[0].Values
	if len(values) != int(dim) {
		return nil, &EmbeddingError{
			Err: fmt.Errorf("embedding dimension mismatch: got %d, store expects %d", len(values), dim),
		}
	}

	s.logger.Debug("Query embedded",
		zap.String("model", s.config.EmbeddingModel),
		zap.Int("dimension", len(values)),
	)

	return values, nil
}

// Generate produces the final answer text for a fully composed prompt.
// Single shot, no tool use.
func (s *LLMService) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	resp, err := s.client.Models.GenerateContent(ctx, s.config.GenerationModel,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0.3),
		},
	)
	if err != nil {
		return "", &GenerationError{Kind: classifyGenerationError(err), Err: err}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &GenerationError{Kind: GenerationFailed, Err: fmt.Errorf("empty response from model")}
	}

	s.logger.Debug("Answer generated",
		zap.String("model", s.config.GenerationModel),
		zap.Int("length", len(text)),
	)

	return text, nil
}

// classifyGenerationError sorts provider failures into quota, model
// misconfiguration and generic classes by inspecting the error text.
func classifyGenerationError(err error) GenerationErrorKind {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "resource_exhausted"):
		return GenerationQuotaExceeded
	case strings.Contains(msg, "404") || strings.Contains(msg, "not found"):
		return GenerationModelNotFound
	default:
		return GenerationFailed
	}
}
