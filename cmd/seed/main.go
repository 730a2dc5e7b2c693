package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"resume-chatbot/internal/models"
	"resume-chatbot/internal/repository"
	"resume-chatbot/internal/service"
	"resume-chatbot/pkg/config"
	"resume-chatbot/pkg/logger"
	"resume-chatbot/pkg/postgres"

	"go.uber.org/zap"
)

// localEntry is the on-disk shape of one knowledge item. The question is
// the natural key used to diff local data against the store.
type localEntry struct {
	Question   string   `json:"question"`
	AnswerKo   string   `json:"answer_ko"`
	AnswerJa   string   `json:"answer_ja"`
	Tags       []string `json:"tags"`
	ImagePaths []string `json:"image_paths"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	knowledgeRepo := repository.NewKnowledgeRepository(db, appLogger)

	llmService, err := service.NewLLMService(ctx, &cfg.Gemini, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}

	dataPath := os.Getenv("KNOWLEDGE_DATA_PATH")
	if dataPath == "" {
		dataPath = "cmd/seed/knowledge.json"
	}

	local, err := loadLocal(dataPath)
	if err != nil {
		appLogger.Fatal("Failed to load knowledge data", zap.String("path", dataPath), zap.Error(err))
	}
	appLogger.Info("Knowledge data loaded", zap.String("path", dataPath), zap.Int("entries", len(local)))

	stored, err := knowledgeRepo.List(ctx)
	if err != nil {
		appLogger.Fatal("Failed to list stored entries", zap.Error(err))
	}

	storedByQuestion := make(map[string]models.KnowledgeEntry, len(stored))
	for _, entry := range stored {
		storedByQuestion[entry.Question] = entry
	}

	var inserted, updated, skipped, deleted int

	for _, item := range local {
		existing, found := storedByQuestion[item.Question]
		if found && !changed(existing, item) {
			skipped++
			continue
		}

		// New or changed content means a new embedding. The embedded text
		// spans the question and both answers, matching what is stored.
		embedding, err := llmService.Embed(ctx, item.Question+" "+item.AnswerKo+" "+item.AnswerJa)
		if err != nil {
			appLogger.Fatal("Failed to embed entry", zap.String("question", item.Question), zap.Error(err))
		}

		entry := &models.KnowledgeEntry{
			Question:   item.Question,
			AnswerKo:   item.AnswerKo,
			AnswerJa:   item.AnswerJa,
			Tags:       item.Tags,
			ImagePaths: item.ImagePaths,
			Embedding:  embedding,
		}
		if found {
			entry.ID = existing.ID
		}

		if err := knowledgeRepo.Upsert(ctx, entry); err != nil {
			appLogger.Fatal("Failed to upsert entry", zap.String("question", item.Question), zap.Error(err))
		}

		if found {
			updated++
			appLogger.Info("Updated entry", zap.String("question", item.Question))
		} else {
			inserted++
			appLogger.Info("Inserted entry", zap.String("question", item.Question))
		}
	}

	localQuestions := make(map[string]struct{}, len(local))
	for _, item := range local {
		localQuestions[item.Question] = struct{}{}
	}
	for question := range storedByQuestion {
		if _, ok := localQuestions[question]; ok {
			continue
		}
		if err := knowledgeRepo.DeleteByQuestion(ctx, question); err != nil {
			appLogger.Fatal("Failed to delete entry", zap.String("question", question), zap.Error(err))
		}
		deleted++
		appLogger.Info("Deleted entry", zap.String("question", question))
	}

	appLogger.Info("Sync completed",
		zap.Int("inserted", inserted),
		zap.Int("updated", updated),
		zap.Int("skipped", skipped),
		zap.Int("deleted", deleted),
	)
}

func loadLocal(path string) ([]localEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []localEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// changed reports whether any synced field differs between the stored
// entry and the local item.
func changed(stored models.KnowledgeEntry, item localEntry) bool {
	return stored.AnswerKo != item.AnswerKo ||
		stored.AnswerJa != item.AnswerJa ||
		!equalStrings(stored.Tags, item.Tags) ||
		!equalStrings(stored.ImagePaths, item.ImagePaths)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
