package service

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"resume-chatbot/internal/models"

	"go.uber.org/zap"
)

//go:embed decks.json
var defaultDecksJSON []byte

const maxSuggestions = 3

// TopicInitial and TopicFallback are the topics reported for the two
// special decks; follow-up decks report their own name.
const (
	TopicInitial  = "initial"
	TopicFallback = "fallback"
)

// SuggestionService selects canned follow-up questions for a turn.
// Deck declaration order is significant: ties in tag overlap go to the
// first-seen deck.
type SuggestionService struct {
	initial  *models.SuggestionDeck
	fallback *models.SuggestionDeck
	followUp []models.SuggestionDeck
	logger   *zap.Logger
}

// NewSuggestionService loads decks from the given path, or the embedded
// defaults when path is empty.
func NewSuggestionService(path string, logger *zap.Logger) (*SuggestionService, error) {
	data := defaultDecksJSON
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read suggestion decks: %w", err)
		}
		data = fileData
	}

	var decks []models.SuggestionDeck
	if err := json.Unmarshal(data, &decks); err != nil {
		return nil, fmt.Errorf("failed to parse suggestion decks: %w", err)
	}

	s := &SuggestionService{logger: logger}
	for i := range decks {
		deck := decks[i]
		switch deck.Category {
		case models.DeckCategoryInitial:
			s.initial = &deck
		case models.DeckCategoryFallback:
			s.fallback = &deck
		case models.DeckCategoryFollowUp:
			s.followUp = append(s.followUp, deck)
		default:
			return nil, fmt.Errorf("unknown deck category %q in deck %q", deck.Category, deck.Name)
		}
	}
	if s.initial == nil || s.fallback == nil {
		return nil, fmt.Errorf("suggestion decks must include an initial and a fallback deck")
	}

	logger.Info("Suggestion decks loaded",
		zap.Int("follow_up_decks", len(s.followUp)),
	)

	return s, nil
}

// Suggest picks at most three follow-up questions. Priority order:
// first turn wins over retrieval failure wins over tag matching. Used
// suggestions are filtered out before truncation, so a deck can still
// fill all three slots from its remaining questions.
func (s *SuggestionService) Suggest(
	entries []models.KnowledgeEntry,
	firstTurn bool,
	retrievalFailure bool,
	language string,
	exclude map[string]struct{},
) ([]string, string) {
	if firstTurn {
		return s.deckResult(s.initial, language, exclude, TopicInitial)
	}
	if retrievalFailure {
		return s.deckResult(s.fallback, language, exclude, TopicFallback)
	}

	tags := make(map[string]struct{})
	for _, entry := range entries {
		for _, tag := range entry.Tags {
			tags[tag] = struct{}{}
		}
	}

	var best *models.SuggestionDeck
	bestCount := 0
	for i := range s.followUp {
		deck := &s.followUp[i]
		count := 0
		for _, tag := range deck.Tags {
			if _, ok := tags[tag]; ok {
				count++
			}
		}
		// Strictly greater: ties keep the earlier deck.
		if count > bestCount {
			best = deck
			bestCount = count
		}
	}

	if best == nil {
		return nil, ""
	}

	s.logger.Debug("Follow-up deck selected",
		zap.String("deck", best.Name),
		zap.Int("tag_overlap", bestCount),
	)

	return s.deckResult(best, language, exclude, best.Name)
}

// deckResult pairs a deck's remaining questions with its topic. An
// exhausted deck reports no topic: topic and suggestions are empty or
// present together.
func (s *SuggestionService) deckResult(deck *models.SuggestionDeck, language string, exclude map[string]struct{}, topic string) ([]string, string) {
	suggestions := s.take(deck, language, exclude)
	if len(suggestions) == 0 {
		return nil, ""
	}
	return suggestions, topic
}

// take returns the deck's questions for the language (falling back to
// Korean when the language has none), minus excluded ones, capped at three.
func (s *SuggestionService) take(deck *models.SuggestionDeck, language string, exclude map[string]struct{}) []string {
	questions := deck.Suggestions[language]
	if len(questions) == 0 {
		questions = deck.Suggestions[LanguageKo]
	}

	var out []string
	for _, q := range questions {
		if _, used := exclude[q]; used {
			continue
		}
		out = append(out, q)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
