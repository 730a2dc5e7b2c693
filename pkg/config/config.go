package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Gemini      GeminiConfig
	RAG         RAGConfig
	Suggestions SuggestionsConfig
	Logger      LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type GeminiConfig struct {
	APIKey          string
	EmbeddingModel  string
	GenerationModel string
	EmbeddingDim    int32
	Timeout         time.Duration
}

type RAGConfig struct {
	TopK                int
	SimilarityThreshold float64
	MaxContextEntries   int
}

type SuggestionsConfig struct {
	// DecksPath overrides the embedded default suggestion decks when set.
	DecksPath string
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine, environment variables are used directly
	// (useful for Docker/K8s)

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	geminiTimeout, _ := strconv.Atoi(getEnv("GEMINI_TIMEOUT", "30"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_chatbot"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Gemini: GeminiConfig{
			APIKey:          getEnv("GEMINI_API_KEY", ""),
			EmbeddingModel:  getEnv("GEMINI_EMBEDDING_MODEL", "gemini-embedding-001"),
			GenerationModel: getEnv("GEMINI_GENERATION_MODEL", "gemini-2.5-flash"),
			EmbeddingDim:    int32(getEnvInt("GEMINI_EMBEDDING_DIM", 768)),
			Timeout:         time.Duration(geminiTimeout) * time.Second,
		},
		RAG: RAGConfig{
			TopK:                getEnvInt("RAG_TOP_K", 10),
			SimilarityThreshold: getEnvFloat("RAG_SIMILARITY_THRESHOLD", 0.5),
			MaxContextEntries:   getEnvInt("RAG_MAX_CONTEXT_ENTRIES", 3),
		},
		Suggestions: SuggestionsConfig{
			DecksPath: getEnv("SUGGESTION_DECKS_PATH", ""),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
