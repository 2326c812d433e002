package config

import (
	"os"
	"strconv"
)

// ProviderPaths defines the scoring provider endpoint per channel.
type ProviderPaths struct {
	Questionnaire string `json:"questionnaire"`
	Facial        string `json:"facial"`
	Voice         string `json:"voice"`
	Sentiment     string `json:"sentiment"`
}

// ProviderConfig holds modality scoring provider configuration.
type ProviderConfig struct {
	APIKey    string        `json:"-"` // Never serialize
	BaseURL   string        `json:"baseUrl"`
	Paths     ProviderPaths `json:"paths"`
	TimeoutMS int           `json:"timeoutMs"` // per-channel call timeout
}

// DefaultProviderConfig returns the default provider configuration.
func DefaultProviderConfig() *ProviderConfig {
	return &ProviderConfig{
		APIKey:  os.Getenv("PROVIDER_API_KEY"),
		BaseURL: getEnvOrDefault("PROVIDER_BASE_URL", "http://localhost:8000"),
		Paths: ProviderPaths{
			Questionnaire: getEnvOrDefault("PROVIDER_PATH_QUESTIONNAIRE", "/score/questionnaire"),
			Facial:        getEnvOrDefault("PROVIDER_PATH_FACIAL", "/analyze/facial"),
			Voice:         getEnvOrDefault("PROVIDER_PATH_VOICE", "/analyze/voice"),
			Sentiment:     getEnvOrDefault("PROVIDER_PATH_SENTIMENT", "/analyze/sentiment"),
		},
		TimeoutMS: getEnvIntOrDefault("PROVIDER_TIMEOUT_MS", 5000),
	}
}

// IsEnabled returns true if a provider endpoint is configured.
func (c *ProviderConfig) IsEnabled() bool {
	return c.BaseURL != ""
}

// Endpoint returns the full URL for a channel path.
func (c *ProviderConfig) Endpoint(path string) string {
	return c.BaseURL + path
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
