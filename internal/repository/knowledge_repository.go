package repository

import (
	"context"
	"errors"
	"math"
	"time"

	"resume-chatbot/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

const knowledgeTable = "knowledge_entries"

type KnowledgeRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewKnowledgeRepository(db *pgxpool.Pool, logger *zap.Logger) *KnowledgeRepository {
	return &KnowledgeRepository{
		db:     db,
		logger: logger,
	}
}

// SearchSimilar returns up to topK nearest entries by cosine distance,
// ordered by descending similarity. An empty store yields an empty slice,
// not an error. Note: entries with equal distance have no secondary sort
// key, so their relative order is whatever Postgres returns.
func (r *KnowledgeRepository) SearchSimilar(ctx context.Context, embedding []float32, topK int) ([]models.SearchCandidate, error) {
	vec := pgvector.NewVector(embedding)

	query := squirrel.Select(
		"id", "question", "answer_ko", "answer_ja", "tags", "image_paths",
		"created_at", "updated_at",
	).
		Column(squirrel.Expr("embedding <=> ? AS distance", vec)).
		From(knowledgeTable).
		Where("embedding IS NOT NULL").
		OrderByClause("embedding <=> ?", vec).
		Limit(uint64(topK)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []models.SearchCandidate
	for rows.Next() {
		var entry models.KnowledgeEntry
		var distance float64

		if err := rows.Scan(
			&entry.ID, &entry.Question, &entry.AnswerKo, &entry.AnswerJa,
			&entry.Tags, &entry.ImagePaths, &entry.CreatedAt, &entry.UpdatedAt,
			&distance,
		); err != nil {
			return nil, err
		}

		candidates = append(candidates, models.SearchCandidate{
			Entry:      entry,
			Similarity: similarityFromDistance(distance),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return candidates, nil
}

// FindExact fetches the entry whose question equals the given text verbatim.
func (r *KnowledgeRepository) FindExact(ctx context.Context, question string) (*models.KnowledgeEntry, bool, error) {
	query := squirrel.Select(
		"id", "question", "answer_ko", "answer_ja", "tags", "image_paths",
		"created_at", "updated_at",
	).
		From(knowledgeTable).
		Where(squirrel.Eq{"question": question}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, false, err
	}

	var entry models.KnowledgeEntry
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&entry.ID, &entry.Question, &entry.AnswerKo, &entry.AnswerJa,
		&entry.Tags, &entry.ImagePaths, &entry.CreatedAt, &entry.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return &entry, true, nil
}

// List returns all entries without their embeddings. Used by the sync tool
// to diff local data against the store by question.
func (r *KnowledgeRepository) List(ctx context.Context) ([]models.KnowledgeEntry, error) {
	query := squirrel.Select(
		"id", "question", "answer_ko", "answer_ja", "tags", "image_paths",
		"created_at", "updated_at",
	).
		From(knowledgeTable).
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.KnowledgeEntry
	for rows.Next() {
		var entry models.KnowledgeEntry
		if err := rows.Scan(
			&entry.ID, &entry.Question, &entry.AnswerKo, &entry.AnswerJa,
			&entry.Tags, &entry.ImagePaths, &entry.CreatedAt, &entry.UpdatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Upsert inserts an entry or, when the question already exists, updates its
// answers, tags, image paths and embedding in place.
func (r *KnowledgeRepository) Upsert(ctx context.Context, entry *models.KnowledgeEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	now := time.Now()

	query := squirrel.Insert(knowledgeTable).
		Columns("id", "question", "answer_ko", "answer_ja", "tags", "image_paths", "embedding", "created_at", "updated_at").
		Values(entry.ID, entry.Question, entry.AnswerKo, entry.AnswerJa, entry.Tags, entry.ImagePaths,
			pgvector.NewVector(entry.Embedding), now, now).
		Suffix(`ON CONFLICT (question) DO UPDATE SET
			answer_ko = EXCLUDED.answer_ko,
			answer_ja = EXCLUDED.answer_ja,
			tags = EXCLUDED.tags,
			image_paths = EXCLUDED.image_paths,
			embedding = EXCLUDED.embedding,
			updated_at = EXCLUDED.updated_at`).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// DeleteByQuestion removes the entry with the given question, if any.
func (r *KnowledgeRepository) DeleteByQuestion(ctx context.Context, question string) error {
	query := squirrel.Delete(knowledgeTable).
		Where(squirrel.Eq{"question": question}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// similarityFromDistance converts pgvector cosine distance (0 = identical)
// to cosine similarity on a 0..1 scale. The same convention is used at
// indexing and query time; mixing the two directions is a classic source
// of threshold bugs, so the ordering is pinned by a test.
func similarityFromDistance(distance float64) float64 {
	return 1 - distance
}

// cosineSimilarity computes cosine similarity directly from two vectors.
// Kept as the reference implementation for the <=> convention used above.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
