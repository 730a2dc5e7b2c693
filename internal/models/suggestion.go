package models

type DeckCategory string

const (
	DeckCategoryInitial  DeckCategory = "initial"
	DeckCategoryFallback DeckCategory = "fallback"
	DeckCategoryFollowUp DeckCategory = "follow_up"
)

// SuggestionDeck is a named bundle of canned follow-up questions.
// Follow-up decks carry tags and are matched against the tags of
// retrieved knowledge entries; initial and fallback decks have no tags.
type SuggestionDeck struct {
	Name        string              `json:"name"`
	Category    DeckCategory        `json:"category"`
	Tags        []string            `json:"tags,omitempty"`
	Suggestions map[string][]string `json:"suggestions"`
}
