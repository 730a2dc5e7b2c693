package service

import (
	"context"
	"errors"
	"strings"

	"resume-chatbot/internal/models"

	"go.uber.org/zap"
)

// Embedder converts text into a query vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CandidateSearcher returns nearest-neighbor candidates for a query vector,
// ordered by descending similarity, and supports plain exact-question
// lookups for the degraded path when vector search is unavailable.
type CandidateSearcher interface {
	SearchSimilar(ctx context.Context, embedding []float32, topK int) ([]models.SearchCandidate, error)
	FindExact(ctx context.Context, question string) (*models.KnowledgeEntry, bool, error)
}

// Generator produces the final answer for a composed prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Suggester selects canned follow-up questions for a turn.
type Suggester interface {
	Suggest(entries []models.KnowledgeEntry, firstTurn, retrievalFailure bool, language string, exclude map[string]struct{}) ([]string, string)
}

// TurnResult is everything a single chat turn produces for the caller.
type TurnResult struct {
	Response    string
	Images      []string
	Suggestions []string
	Topic       string
	Status      MatchStatus
}

// ChatService orchestrates one chat turn: embed, search, select, compose,
// generate, suggest. Each turn is independent; no state is kept between
// requests, conversation history (the used-suggestion set) is the caller's.
type ChatService struct {
	embedder  Embedder
	searcher  CandidateSearcher
	generator Generator
	retrieval *RetrievalService
	rag       *RAGService
	suggester Suggester
	topK      int
	logger    *zap.Logger
}

func NewChatService(
	embedder Embedder,
	searcher CandidateSearcher,
	generator Generator,
	retrieval *RetrievalService,
	rag *RAGService,
	suggester Suggester,
	topK int,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		embedder:  embedder,
		searcher:  searcher,
		generator: generator,
		retrieval: retrieval,
		rag:       rag,
		suggester: suggester,
		topK:      topK,
		logger:    logger,
	}
}

// HandleTurn runs the full pipeline for one user message. The exclude set
// holds suggestions already offered in this conversation.
//
// language selects the widget's answer and suggestion language; when empty
// it is detected from the message script.
func (s *ChatService) HandleTurn(ctx context.Context, message, language string, exclude map[string]struct{}) (*TurnResult, error) {
	if language == "" {
		language = DetectLanguage(message)
	}

	embedding, err := s.embedder.Embed(ctx, message)
	if err != nil {
		return nil, err
	}

	candidates, err := s.searcher.SearchSimilar(ctx, embedding, s.topK)
	if err != nil {
		// A failed store query degrades to zero candidates unless the
		// request itself is gone.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, &SearchError{Err: err}
		}
		s.logger.Warn("Knowledge search failed, falling back to exact lookup", zap.Error(err))
		candidates = s.exactLookup(ctx, message)
	}

	result := s.retrieval.Select(message, candidates)
	s.logger.Info("Retrieval completed",
		zap.String("status", string(result.Status)),
		zap.Int("entries", len(result.Entries)),
		zap.Int("candidates", len(candidates)),
	)

	contextLang := DetectLanguage(message)
	contextText := s.rag.BuildContext(result.Entries, contextLang)
	prompt := s.rag.BuildPrompt(contextText, message, language)

	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	// The model may declare the context insufficient even when candidates
	// were retrieved; the sentinel makes that a retrieval failure too.
	retrievalFailure := result.Status == MatchNone
	if strings.Contains(answer, NoAnswerKeyword) {
		retrievalFailure = true
		answer = strings.TrimSpace(strings.ReplaceAll(answer, NoAnswerKeyword, ""))
	}
	// A reply that was only the sentinel must not reach the user blank.
	if answer == "" {
		answer = NoAnswerReply(language)
	}

	suggestions, topic := s.suggester.Suggest(result.Entries, false, retrievalFailure, language, exclude)

	return &TurnResult{
		Response:    answer,
		Images:      collectImages(result.Entries),
		Suggestions: suggestions,
		Topic:       topic,
		Status:      result.Status,
	}, nil
}

// InitialSuggestions returns the conversation-start deck.
func (s *ChatService) InitialSuggestions(language string, exclude map[string]struct{}) ([]string, string) {
	return s.suggester.Suggest(nil, true, false, language, exclude)
}

// exactLookup is the degraded retrieval path: when vector search is down,
// a verbatim re-ask of a catalogued question can still be answered through
// the plain equality index.
func (s *ChatService) exactLookup(ctx context.Context, message string) []models.SearchCandidate {
	entry, found, err := s.searcher.FindExact(ctx, message)
	if err != nil || !found {
		return nil
	}
	return []models.SearchCandidate{{Entry: *entry, Similarity: 1.0}}
}

// collectImages gathers image paths from the accepted entries in retrieval
// order, dropping duplicates.
func collectImages(entries []models.KnowledgeEntry) []string {
	var images []string
	seen := make(map[string]struct{})
	for _, entry := range entries {
		for _, path := range entry.ImagePaths {
			if _, ok := seen[path]; ok {
				continue
			}
			seen[path] = struct{}{}
			images = append(images, path)
		}
	}
	return images
}
