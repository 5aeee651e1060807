package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	Env             string

	// Completion endpoint (Azure OpenAI). The deployment name doubles as
	// the model name.
	AzureOpenAIEndpoint   string
	AzureOpenAIKey        string
	AzureOpenAIDeployment string
	AzureOpenAIAPIVersion string

	// Transcription endpoint (OpenAI).
	OpenAIAPIKey    string
	TranscribeModel string
	TranscribeURL   string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	_ = godotenv.Load(".env", "cmd/.env")

	return Config{
		Port:                  getEnv("PORT", "8080"),
		CORSAllowOrigin:       splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		Env:                   normalizeEnv(getEnv("ENV", "dev")),
		AzureOpenAIEndpoint:   strings.TrimRight(getEnv("AZURE_OPENAI_ENDPOINT", ""), "/"),
		AzureOpenAIKey:        getEnv("AZURE_OPENAI_KEY", ""),
		AzureOpenAIDeployment: getEnv("AZURE_OPENAI_DEPLOYMENT", ""),
		AzureOpenAIAPIVersion: getEnv("AZURE_OPENAI_API_VERSION", ""),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		TranscribeModel:       getEnv("OPENAI_TRANSCRIBE_MODEL", "whisper-1"),
		TranscribeURL:         getEnv("OPENAI_TRANSCRIBE_URL", "https://api.openai.com/v1/audio/transcriptions"),
	}
}

// Validate checks that every credential the proxied services need is present.
// A missing credential is a deployment problem, so callers should treat a
// non-nil result as fatal at startup.
func (c Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"AZURE_OPENAI_ENDPOINT", c.AzureOpenAIEndpoint},
		{"AZURE_OPENAI_KEY", c.AzureOpenAIKey},
		{"AZURE_OPENAI_DEPLOYMENT", c.AzureOpenAIDeployment},
		{"AZURE_OPENAI_API_VERSION", c.AzureOpenAIAPIVersion},
		{"OPENAI_API_KEY", c.OpenAIAPIKey},
	}

	var missing []string
	for _, req := range required {
		if strings.TrimSpace(req.value) == "" {
			missing = append(missing, req.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
