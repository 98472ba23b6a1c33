package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	CORS     CORSConfig
	AI       AIConfig
	Postgres PostgresConfig
}

type ServerConfig struct {
	Addr string
}

type UploadConfig struct {
	Root string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type AIConfig struct {
	APIKey     string
	ChatModel  string
	EmbedModel string
	Timeout    time.Duration
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Addr: getenv("LISTEN_ADDR", ":8080"),
		},
		Upload: UploadConfig{
			Root: getenv("UPLOAD_ROOT", "uploads"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
		},
		AI: AIConfig{
			APIKey:     os.Getenv("AI_API_KEY"),
			ChatModel:  getenv("AI_CHAT_MODEL", "gemini-2.0-flash"),
			EmbedModel: getenv("AI_EMBED_MODEL", "text-embedding-004"),
			Timeout:    getenvDuration("AI_TIMEOUT", 120*time.Second),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
