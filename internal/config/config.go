package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database (optional; summaries/decks/jobs are only recorded when set)
	DatabaseURL string

	// Redis (sessions, job queue, pub/sub)
	RedisURL string

	// Session tokens
	SessionSecret string

	// Generation backend
	LLMProvider     string // "gemini" | "openai"
	GeminiAPIKey    string
	GeminiModel     string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string
	MaxOutputTokens int
	Temperature     float64

	// Content acquisition
	FetchTimeoutSeconds int
	ContentCharBudget   int

	// Companion extension
	ExtensionSharedKey string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                getEnvOrDefault("PORT", "8080"),
		Env:                 getEnvOrDefault("ENV", "development"),
		DatabaseURL:         getEnvOrDefault("DATABASE_URL", ""),
		RedisURL:            mustGetEnv("REDIS_URL"),
		SessionSecret:       mustGetEnv("SESSION_SECRET"),
		LLMProvider:         getEnvOrDefault("LLM_PROVIDER", "gemini"),
		GeminiAPIKey:        getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:         getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		OpenAIAPIKey:        getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIBaseURL:       getEnvOrDefault("OPENAI_BASE_URL", ""),
		OpenAIModel:         getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		MaxOutputTokens:     getEnvAsIntOrDefault("LLM_MAX_OUTPUT_TOKENS", 420),
		Temperature:         getEnvAsFloatOrDefault("LLM_TEMPERATURE", 0.2),
		FetchTimeoutSeconds: getEnvAsIntOrDefault("FETCH_TIMEOUT_SECONDS", 8),
		ContentCharBudget:   getEnvAsIntOrDefault("CONTENT_CHAR_BUDGET", 20000),
		ExtensionSharedKey:  getEnvOrDefault("EXTENSION_SHARED_KEY", ""),
		FrontendURL:         getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}
