package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the configuration for an extraction run
type Config struct {
	Corpus    CorpusConfig
	Tokenizer TokenizerConfig
	Pipeline  PipelineConfig
	Storage   StorageConfig
	LogLevel  string
}

// CorpusConfig selects and addresses the record source
type CorpusConfig struct {
	Source        string // algolia, jsonl, htmldir
	Index         string // index name, file path or directory
	AlgoliaAppID  string
	AlgoliaAPIKey string
	TextFields    []string
	PageSize      int
	PageDelay     time.Duration
}

// TokenizerConfig holds word filtering settings
type TokenizerConfig struct {
	Language        string `json:"language"`
	MinWordLength   int    `json:"minWordLength"`
	MaxWordLength   int    `json:"maxWordLength"`
	FilterStopWords bool   `json:"filterStopWords"`
	StopWordsFile   string `json:"stopWordsFile,omitempty"`
}

// PipelineConfig holds aggregation, ranking and persistence limits
type PipelineConfig struct {
	MaxWords         int `json:"maxWordsToStore"`
	MinFrequency     int `json:"minFrequency"`
	MaxExamples      int `json:"maxExamples"`
	BatchLimit       int `json:"batchLimit"`
	ProgressInterval int `json:"progressInterval"`
	Workers          int `json:"workers"`
}

// StorageConfig holds persistence back end settings
type StorageConfig struct {
	Backend           string // sqlite, redis, cassandra
	SQLitePath        string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	CassandraHosts    []string
	CassandraKeyspace string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	language := GetStringEnv("VOCAB_LANGUAGE", "en")
	minLen := 3
	if language == "ja" {
		minLen = 1
	}

	return &Config{
		Corpus: CorpusConfig{
			Source:        GetStringEnv("VOCAB_SOURCE", "algolia"),
			Index:         GetStringEnv("VOCAB_INDEX", "questions"),
			AlgoliaAppID:  GetStringEnv("ALGOLIA_APP_ID", ""),
			AlgoliaAPIKey: GetStringEnv("ALGOLIA_API_KEY", ""),
			TextFields:    GetListEnv("VOCAB_TEXT_FIELDS", []string{"question", "translated_text", "source_text", "english_text"}),
			PageSize:      GetIntEnv("VOCAB_PAGE_SIZE", 1000),
			PageDelay:     GetDurationEnv("VOCAB_PAGE_DELAY", 100*time.Millisecond),
		},
		Tokenizer: TokenizerConfig{
			Language:        language,
			MinWordLength:   GetIntEnv("VOCAB_MIN_WORD_LENGTH", minLen),
			MaxWordLength:   GetIntEnv("VOCAB_MAX_WORD_LENGTH", 20),
			FilterStopWords: GetBoolEnv("VOCAB_FILTER_STOP_WORDS", true),
			StopWordsFile:   GetStringEnv("VOCAB_STOP_WORDS_FILE", ""),
		},
		Pipeline: PipelineConfig{
			MaxWords:         GetIntEnv("VOCAB_MAX_WORDS", 5000),
			MinFrequency:     GetIntEnv("VOCAB_MIN_FREQUENCY", 2),
			MaxExamples:      GetIntEnv("VOCAB_MAX_EXAMPLES", 10),
			BatchLimit:       GetIntEnv("VOCAB_BATCH_LIMIT", 500),
			ProgressInterval: GetIntEnv("VOCAB_PROGRESS_INTERVAL", 1000),
			Workers:          GetIntEnv("VOCAB_WORKERS", 4),
		},
		Storage: StorageConfig{
			Backend:           GetStringEnv("VOCAB_STORE", "sqlite"),
			SQLitePath:        GetStringEnv("SQLITE_PATH", "vocabex.db"),
			RedisAddr:         GetStringEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword:     GetStringEnv("REDIS_PASSWORD", ""),
			RedisDB:           GetIntEnv("REDIS_DB", 0),
			CassandraHosts:    GetListEnv("CASSANDRA_HOSTS", []string{"localhost"}),
			CassandraKeyspace: GetStringEnv("CASSANDRA_KEYSPACE", "vocabex"),
		},
		LogLevel: GetStringEnv("LOG_LEVEL", "info"),
	}
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch c.Corpus.Source {
	case "algolia":
		if c.Corpus.AlgoliaAppID == "" || c.Corpus.AlgoliaAPIKey == "" {
			return fmt.Errorf("ALGOLIA_APP_ID and ALGOLIA_API_KEY are required for the algolia source")
		}
	case "jsonl", "htmldir":
	default:
		return fmt.Errorf("unknown corpus source %q", c.Corpus.Source)
	}
	if c.Corpus.Index == "" {
		return fmt.Errorf("VOCAB_INDEX must be set")
	}
	if len(c.Corpus.TextFields) == 0 {
		return fmt.Errorf("at least one text field is required")
	}
	if c.Corpus.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.Corpus.PageSize)
	}
	if c.Corpus.PageDelay < 0 {
		return fmt.Errorf("page delay must not be negative")
	}

	switch c.Tokenizer.Language {
	case "en", "ja":
	default:
		return fmt.Errorf("unknown language %q", c.Tokenizer.Language)
	}
	if c.Tokenizer.MinWordLength < 1 {
		return fmt.Errorf("min word length must be at least 1, got %d", c.Tokenizer.MinWordLength)
	}
	if c.Tokenizer.MaxWordLength < c.Tokenizer.MinWordLength {
		return fmt.Errorf("max word length %d is below min word length %d", c.Tokenizer.MaxWordLength, c.Tokenizer.MinWordLength)
	}

	p := c.Pipeline
	if p.MaxWords <= 0 || p.MinFrequency < 1 || p.MaxExamples < 1 || p.ProgressInterval <= 0 || p.Workers <= 0 {
		return fmt.Errorf("pipeline limits must be positive: %+v", p)
	}
	// Each word is written as a summary and a detail document.
	if p.BatchLimit < 2 {
		return fmt.Errorf("batch limit must be at least 2, got %d", p.BatchLimit)
	}

	switch c.Storage.Backend {
	case "sqlite", "redis", "cassandra":
	default:
		return fmt.Errorf("unknown store %q", c.Storage.Backend)
	}
	return nil
}

func GetStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// GetListEnv splits a comma-separated variable, dropping blank items.
func GetListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
