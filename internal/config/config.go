package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	GoogleAPIKey           string
	SupabaseURL            string
	SupabaseServiceRoleKey string
	Port                   string
	GinMode                string

	// Vector store
	DocumentsTable   string
	MatchFunction    string
	VectorDimensions int
	RetrievalTopK    int

	// Models
	GenerativeModel string
	EmbeddingModel  string
	LLMMaxAttempts  int

	// Ingestion
	MaxChunkSize int
	ChunkOverlap int
	DocumentPath string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		GoogleAPIKey:           getEnv("GOOGLE_API_KEY", ""),
		SupabaseURL:            strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		Port:                   getEnv("PORT", "5000"),
		GinMode:                getEnv("GIN_MODE", "debug"),

		DocumentsTable:   getEnv("DOCUMENTS_TABLE", "documents"),
		MatchFunction:    getEnv("MATCH_FUNCTION", "match_documents"),
		VectorDimensions: getEnvInt("VECTOR_DIM", 768),
		RetrievalTopK:    getEnvInt("RETRIEVAL_TOP_K", 3),

		GenerativeModel: getEnv("GENERATIVE_MODEL", "gemini-2.0-flash"),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "text-embedding-004"),
		LLMMaxAttempts:  getEnvInt("LLM_MAX_ATTEMPTS", 2),

		MaxChunkSize: getEnvInt("MAX_CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),
		DocumentPath: getEnv("DOCUMENT_PATH", "data/return_policy.pdf"),
	}

	// Report every missing key in one diagnostic so the environment can
	// be fixed in a single pass. Values are never echoed.
	var missing []string
	if cfg.GoogleAPIKey == "" {
		missing = append(missing, "GOOGLE_API_KEY")
	}
	if cfg.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if cfg.SupabaseServiceRoleKey == "" {
		missing = append(missing, "SUPABASE_SERVICE_ROLE_KEY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s - set them in .env file", strings.Join(missing, ", "))
	}

	if cfg.ChunkOverlap >= cfg.MaxChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than MAX_CHUNK_SIZE (%d)", cfg.ChunkOverlap, cfg.MaxChunkSize)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
