package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "gemini-embedding-001", cfg.Gemini.EmbeddingModel)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.GenerationModel)
	assert.Equal(t, int32(768), cfg.Gemini.EmbeddingDim)
	assert.Equal(t, 10, cfg.RAG.TopK)
	assert.Equal(t, 0.5, cfg.RAG.SimilarityThreshold)
	assert.Equal(t, 3, cfg.RAG.MaxContextEntries)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RAG_SIMILARITY_THRESHOLD", "0.65")
	t.Setenv("RAG_TOP_K", "5")
	t.Setenv("GEMINI_EMBEDDING_DIM", "1536")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 0.65, cfg.RAG.SimilarityThreshold)
	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.Equal(t, int32(1536), cfg.Gemini.EmbeddingDim)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("RAG_TOP_K", "many")
	t.Setenv("RAG_SIMILARITY_THRESHOLD", "high")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.RAG.TopK)
	assert.Equal(t, 0.5, cfg.RAG.SimilarityThreshold)
}
