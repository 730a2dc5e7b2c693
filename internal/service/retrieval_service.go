package service

import (
	"sort"

	"resume-chatbot/internal/models"

	"go.uber.org/zap"
)

// MatchStatus classifies a retrieval outcome.
type MatchStatus string

const (
	// MatchExact means the user re-asked a catalogued question verbatim.
	MatchExact MatchStatus = "exact"
	// MatchSemantic means one or more candidates cleared the similarity threshold.
	MatchSemantic MatchStatus = "semantic"
	// MatchNone is an expected, non-exceptional outcome that routes to the
	// fallback suggestion deck, never to an error.
	MatchNone MatchStatus = "none"
)

// RetrievalResult holds the entries selected to ground the answer.
type RetrievalResult struct {
	Entries []models.KnowledgeEntry
	Status  MatchStatus
}

// RetrievalService filters and ranks search candidates into the set of
// entries fed to the answer generator.
type RetrievalService struct {
	threshold  float64
	maxEntries int
	logger     *zap.Logger
}

func NewRetrievalService(threshold float64, maxEntries int, logger *zap.Logger) *RetrievalService {
	return &RetrievalService{
		threshold:  threshold,
		maxEntries: maxEntries,
		logger:     logger,
	}
}

// Select applies the retrieval policy:
//
//  1. A candidate whose question equals the query verbatim (case-sensitive)
//     wins outright, regardless of its similarity score.
//  2. Otherwise candidates above the threshold are kept, then truncated to
//     maxEntries by score. Threshold before truncation, so a short list of
//     weak matches can never pad the context.
//  3. Nothing above the threshold is MatchNone with an empty set.
//
// Ties in similarity keep their search order (stable sort); the store has
// no secondary sort key, so equal-distance order is store-assigned.
func (s *RetrievalService) Select(query string, candidates []models.SearchCandidate) RetrievalResult {
	for _, c := range candidates {
		if c.Entry.Question == query {
			s.logger.Debug("Exact question match",
				zap.String("question", c.Entry.Question),
				zap.Float64("similarity", c.Similarity),
			)
			return RetrievalResult{
				Entries: []models.KnowledgeEntry{c.Entry},
				Status:  MatchExact,
			}
		}
	}

	ranked := make([]models.SearchCandidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})

	var accepted []models.KnowledgeEntry
	for _, c := range ranked {
		if c.Similarity <= s.threshold {
			continue
		}
		accepted = append(accepted, c.Entry)
		if len(accepted) == s.maxEntries {
			break
		}
	}

	if len(accepted) == 0 {
		return RetrievalResult{Status: MatchNone}
	}

	s.logger.Debug("Semantic matches selected",
		zap.Int("accepted", len(accepted)),
		zap.Int("candidates", len(candidates)),
	)

	return RetrievalResult{
		Entries: accepted,
		Status:  MatchSemantic,
	}
}
