package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"ai-chatbot/internal/constant"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App  AppConfig
	Keys APIKeys
	Ai   AIConfig
}

type AppConfig struct {
	Port               string `validate:"required,numeric"`
	Environment        string `validate:"required"`
	LogFilePath        string `validate:"required"`
	CorsAllowedOrigins string
	NatsURL            string `validate:"omitempty,url"`
	RedisURL           string
}

type APIKeys struct {
	GoogleGemini string
	HuggingFace  string
}

type AIConfig struct {
	LLMProvider       string        `validate:"required,oneof=gemini ollama huggingface"`
	LLMModel          string        `validate:"required"`
	OllamaBaseURL     string        `validate:"required_if=LLMProvider ollama,omitempty,url"`
	HuggingFaceURL    string        `validate:"omitempty,url"`
	SystemInstruction string        `validate:"required"`
	MaxOutputTokens   int           `validate:"gt=0"`
	UpstreamTimeout   time.Duration `validate:"gt=0"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	provider := getEnv("LLM_PROVIDER", constant.LLMProviderGemini)
	timeoutSeconds := getEnvAsInt("UPSTREAM_TIMEOUT_SECONDS", int(constant.DefaultUpstreamTimeout/time.Second))

	return &Config{
		App: AppConfig{
			Port:               getEnv("PORT", "5000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/relay.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GEMINI_API_KEY", getEnv("GOOGLE_GEMINI_API_KEY", "")),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:       provider,
			LLMModel:          getEnv("LLM_MODEL", defaultModel(provider)),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", constant.OllamaDefaultBaseURL),
			HuggingFaceURL:    getEnv("HUGGINGFACE_BASE_URL", ""),
			SystemInstruction: getEnv("SYSTEM_INSTRUCTION", constant.DefaultSystemInstruction),
			MaxOutputTokens:   getEnvAsInt("MAX_OUTPUT_TOKENS", constant.DefaultMaxOutputTokens),
			UpstreamTimeout:   time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

// Validate checks the loaded values once at startup; config is read-only afterwards.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Ai.LLMProvider == constant.LLMProviderGemini && c.Keys.GoogleGemini == "" {
		return fmt.Errorf("invalid configuration: GEMINI_API_KEY is required for the gemini provider")
	}
	if c.Ai.LLMProvider == constant.LLMProviderHuggingFace && c.Keys.HuggingFace == "" {
		return fmt.Errorf("invalid configuration: HUGGINGFACE_API_KEY is required for the huggingface provider")
	}
	return nil
}

// ProviderEndpoint returns the base URL and credential the configured provider needs.
func (c *Config) ProviderEndpoint() (baseURL, apiKey string) {
	switch c.Ai.LLMProvider {
	case constant.LLMProviderOllama:
		return c.Ai.OllamaBaseURL, ""
	case constant.LLMProviderHuggingFace:
		return c.Ai.HuggingFaceURL, c.Keys.HuggingFace
	default:
		return "", c.Keys.GoogleGemini
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func defaultModel(provider string) string {
	switch provider {
	case constant.LLMProviderOllama:
		return constant.OllamaDefaultModel
	case constant.LLMProviderHuggingFace:
		return constant.HuggingFaceDefaultModel
	default:
		return constant.GeminiDefaultModel
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
