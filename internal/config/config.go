package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Provider ProviderConfig
	Billing  BillingConfig
	Enrich   EnrichConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	LicenseEventTopic  string
}

type DatabaseConfig struct {
	Connection string
}

type ProviderConfig struct {
	Type    string // "openai" or "ollama"
	APIKey  string
	BaseURL string
	Model   string
}

type BillingConfig struct {
	MidtransServerKey    string
	MidtransIsProduction bool
	FrontendURL          string
}

type EnrichConfig struct {
	Enabled   bool
	Allowlist []string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8787"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8787"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			LicenseEventTopic:  getEnv("LICENSE_EVENT_TOPIC_NAME", "LICENSE_EVENTS"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Provider: ProviderConfig{
			Type:    getEnv("LLM_PROVIDER", "openai"),
			APIKey:  getEnv("PROVIDER_API_KEY", ""),
			BaseURL: getEnv("PROVIDER_BASE_URL", "https://api.openai.com/v1"),
			Model:   getEnv("PROVIDER_MODEL", "gpt-4o-mini"),
		},
		Billing: BillingConfig{
			MidtransServerKey:    getEnv("MIDTRANS_SERVER_KEY", ""),
			MidtransIsProduction: getEnv("MIDTRANS_IS_PRODUCTION", "false") == "true",
			FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:5173"),
		},
		Enrich: EnrichConfig{
			Enabled:   strings.ToLower(getEnv("ENABLE_WEB_RAG", "false")) == "true",
			Allowlist: getEnvAsList("RAG_WHITELIST"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
