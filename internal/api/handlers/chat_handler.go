package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"resume-chatbot/internal/dto"
	"resume-chatbot/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ChatService is the turn-handling surface the HTTP layer depends on.
type ChatService interface {
	HandleTurn(ctx context.Context, message, language string, exclude map[string]struct{}) (*service.TurnResult, error)
	InitialSuggestions(language string, exclude map[string]struct{}) ([]string, string)
}

type ChatHandler struct {
	chatService ChatService
	logger      *zap.Logger
}

func NewChatHandler(chatService ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// Chat godoc
// @Summary Answer a chat message
// @Description Runs the RAG pipeline for one user message and returns the grounded answer with follow-up suggestions
// @Tags chat
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "User message and widget language"
// @Param X-Used-Suggestions header string false "JSON array of suggestions already offered in this conversation"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/chat [post]
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: userMessage(req.Language, msgEmptyMessage),
		})
	}

	exclude := parseUsedSuggestions(c.Get("X-Used-Suggestions"))

	result, err := h.chatService.HandleTurn(c.Context(), req.Message, req.Language, exclude)
	if err != nil {
		return h.turnError(c, req.Language, err)
	}

	return c.JSON(dto.ChatResponse{
		Response:    result.Response,
		Images:      result.Images,
		Suggestions: result.Suggestions,
		Topic:       result.Topic,
		Language:    req.Language,
		Timestamp:   time.Now().UTC(),
	})
}

// Suggestions godoc
// @Summary Conversation-start suggestions
// @Description Returns the initial suggestion deck shown before the first message
// @Tags chat
// @Produce json
// @Param language query string false "Widget language (ko or ja)"
// @Param X-Used-Suggestions header string false "JSON array of suggestions already offered in this conversation"
// @Success 200 {object} dto.SuggestionsResponse
// @Router /api/v1/suggestions [get]
func (h *ChatHandler) Suggestions(c *fiber.Ctx) error {
	language := c.Query("language", service.LanguageKo)
	exclude := parseUsedSuggestions(c.Get("X-Used-Suggestions"))

	suggestions, topic := h.chatService.InitialSuggestions(language, exclude)

	return c.JSON(dto.SuggestionsResponse{
		Suggestions: suggestions,
		Topic:       topic,
		Language:    language,
	})
}

// turnError maps the pipeline error taxonomy onto HTTP statuses. The
// user-facing message is a single localized string per class; internal
// distinctions affect only the status code.
func (h *ChatHandler) turnError(c *fiber.Ctx, language string, err error) error {
	var embErr *service.EmbeddingError
	var searchErr *service.SearchError
	var genErr *service.GenerationError

	switch {
	case errors.As(err, &embErr), errors.As(err, &searchErr):
		h.logger.Error("Chat turn failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: userMessage(language, msgServiceUnavailable),
		})
	case errors.As(err, &genErr):
		h.logger.Error("Chat turn failed", zap.Error(err), zap.String("kind", string(genErr.Kind)))
		switch genErr.Kind {
		case service.GenerationQuotaExceeded:
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: userMessage(language, msgQuotaExceeded),
			})
		case service.GenerationModelNotFound:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: userMessage(language, msgModelMisconfigured),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: userMessage(language, msgServerError),
			})
		}
	default:
		h.logger.Error("Chat turn failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: userMessage(language, msgServerError),
		})
	}
}

// parseUsedSuggestions decodes the caller-tracked exclusion set. A missing
// or malformed header means no exclusions.
func parseUsedSuggestions(header string) map[string]struct{} {
	exclude := make(map[string]struct{})
	if header == "" {
		return exclude
	}

	var used []string
	if err := json.Unmarshal([]byte(header), &used); err != nil {
		return exclude
	}
	for _, s := range used {
		exclude[s] = struct{}{}
	}
	return exclude
}
