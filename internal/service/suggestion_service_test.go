package service

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"resume-chatbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSuggester(t *testing.T) *SuggestionService {
	t.Helper()
	svc, err := NewSuggestionService("", zap.NewNop())
	require.NoError(t, err)
	return svc
}

func taggedEntry(tags ...string) models.KnowledgeEntry {
	return models.KnowledgeEntry{Tags: tags}
}

func TestSuggestFirstTurnReturnsInitialDeck(t *testing.T) {
	svc := newSuggester(t)

	// Retrieved entries must be ignored entirely on the first turn.
	entries := []models.KnowledgeEntry{taggedEntry("frontend", "react")}
	suggestions, topic := svc.Suggest(entries, true, false, LanguageKo, nil)

	assert.Equal(t, TopicInitial, topic)
	assert.Equal(t, svc.initial.Suggestions[LanguageKo][:3], suggestions)
}

func TestSuggestFirstTurnWinsOverFailure(t *testing.T) {
	svc := newSuggester(t)

	_, topic := svc.Suggest(nil, true, true, LanguageKo, nil)

	assert.Equal(t, TopicInitial, topic)
}

func TestSuggestRetrievalFailureReturnsFallbackDeck(t *testing.T) {
	svc := newSuggester(t)

	suggestions, topic := svc.Suggest(nil, false, true, LanguageJa, nil)

	assert.Equal(t, TopicFallback, topic)
	assert.Equal(t, svc.fallback.Suggestions[LanguageJa], suggestions)
}

func TestSuggestLargestTagOverlapWins(t *testing.T) {
	decks := []models.SuggestionDeck{
		{Name: "initial", Category: models.DeckCategoryInitial, Suggestions: map[string][]string{"ko": {"i1"}}},
		{Name: "fallback", Category: models.DeckCategoryFallback, Suggestions: map[string][]string{"ko": {"f1"}}},
		{Name: "deck-a", Category: models.DeckCategoryFollowUp, Tags: []string{"frontend"},
			Suggestions: map[string][]string{"ko": {"a1"}}},
		{Name: "deck-b", Category: models.DeckCategoryFollowUp, Tags: []string{"frontend", "react"},
			Suggestions: map[string][]string{"ko": {"b1", "b2"}}},
	}
	svc := newSuggesterFromDecks(t, decks)

	entries := []models.KnowledgeEntry{taggedEntry("frontend", "react")}
	suggestions, topic := svc.Suggest(entries, false, false, LanguageKo, nil)

	assert.Equal(t, "deck-b", topic)
	assert.Equal(t, []string{"b1", "b2"}, suggestions)
}

func TestSuggestTieGoesToFirstDeclaredDeck(t *testing.T) {
	decks := []models.SuggestionDeck{
		{Name: "initial", Category: models.DeckCategoryInitial, Suggestions: map[string][]string{"ko": {"i1"}}},
		{Name: "fallback", Category: models.DeckCategoryFallback, Suggestions: map[string][]string{"ko": {"f1"}}},
		{Name: "deck-a", Category: models.DeckCategoryFollowUp, Tags: []string{"career"},
			Suggestions: map[string][]string{"ko": {"a1"}}},
		{Name: "deck-b", Category: models.DeckCategoryFollowUp, Tags: []string{"career"},
			Suggestions: map[string][]string{"ko": {"b1"}}},
	}
	svc := newSuggesterFromDecks(t, decks)

	_, topic := svc.Suggest([]models.KnowledgeEntry{taggedEntry("career")}, false, false, LanguageKo, nil)

	assert.Equal(t, "deck-a", topic)
}

func TestSuggestZeroOverlapReturnsNothing(t *testing.T) {
	svc := newSuggester(t)

	suggestions, topic := svc.Suggest([]models.KnowledgeEntry{taggedEntry("unrelated-tag")}, false, false, LanguageKo, nil)

	assert.Empty(t, suggestions)
	assert.Equal(t, "", topic)
}

func TestSuggestExcludesUsedBeforeTruncating(t *testing.T) {
	decks := []models.SuggestionDeck{
		{Name: "initial", Category: models.DeckCategoryInitial,
			Suggestions: map[string][]string{"ko": {"q1", "q2", "q3", "q4", "q5"}}},
		{Name: "fallback", Category: models.DeckCategoryFallback, Suggestions: map[string][]string{"ko": {"f1"}}},
	}
	svc := newSuggesterFromDecks(t, decks)

	exclude := map[string]struct{}{"q1": {}, "q3": {}}
	suggestions, _ := svc.Suggest(nil, true, false, LanguageKo, exclude)

	// Exclusion happens before the cap, so later questions fill the slots.
	assert.Equal(t, []string{"q2", "q4", "q5"}, suggestions)
}

func TestSuggestNeverReturnsExcluded(t *testing.T) {
	svc := newSuggester(t)

	exclude := make(map[string]struct{})
	for _, q := range svc.initial.Suggestions[LanguageKo] {
		exclude[q] = struct{}{}
	}
	suggestions, topic := svc.Suggest(nil, true, false, LanguageKo, exclude)

	// An exhausted deck yields no suggestions and, with them, no topic.
	assert.Empty(t, suggestions)
	assert.Equal(t, "", topic)
}

func TestSuggestExhaustedFallbackDeckHasNoTopic(t *testing.T) {
	svc := newSuggester(t)

	exclude := make(map[string]struct{})
	for _, q := range svc.fallback.Suggestions[LanguageKo] {
		exclude[q] = struct{}{}
	}
	suggestions, topic := svc.Suggest(nil, false, true, LanguageKo, exclude)

	assert.Empty(t, suggestions)
	assert.Equal(t, "", topic)
}

func TestSuggestCapsAtThree(t *testing.T) {
	svc := newSuggester(t)

	suggestions, _ := svc.Suggest(nil, true, false, LanguageKo, nil)

	assert.Len(t, suggestions, 3)
}

func TestSuggestUnknownLanguageFallsBackToKorean(t *testing.T) {
	svc := newSuggester(t)

	suggestions, _ := svc.Suggest(nil, true, false, "en", nil)

	assert.Equal(t, svc.initial.Suggestions[LanguageKo][:3], suggestions)
}

func TestNewSuggestionServiceRejectsMissingDecks(t *testing.T) {
	decks := []models.SuggestionDeck{
		{Name: "initial", Category: models.DeckCategoryInitial, Suggestions: map[string][]string{"ko": {"i1"}}},
	}
	_, err := NewSuggestionService(writeDecks(t, decks), zap.NewNop())

	assert.Error(t, err)
}

func newSuggesterFromDecks(t *testing.T, decks []models.SuggestionDeck) *SuggestionService {
	t.Helper()
	svc, err := NewSuggestionService(writeDecks(t, decks), zap.NewNop())
	require.NoError(t, err)
	return svc
}

func writeDecks(t *testing.T, decks []models.SuggestionDeck) string {
	t.Helper()
	data, err := json.Marshal(decks)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "decks.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}
