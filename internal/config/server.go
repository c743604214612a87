package config

import (
	"fmt"

	"github.com/vidmark/vidmark/internal/storage"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendS3       = "s3"
)

type Server struct {
	Port           string
	BaseURL        string
	Backend        string
	RootKey        string
	DataDir        string
	DatabaseURL    string
	SQLitePath     string
	S3             storage.S3Config
	TokenSecret    string
	AllowedOrigins []string
	LogLevel       string
	LogFormat      string
	RateLimitRPS   float64
	RateLimitBurst int
	EnableDocs     bool
}

// ServerFromEnv reads the server settings and checks the chosen backend has
// what it needs.
func ServerFromEnv() (Server, error) {
	rootKey := GetEnv("ROOT_KEY", storage.DefaultRootKey)
	cfg := Server{
		Port:        GetEnv("PORT", "8080"),
		BaseURL:     GetEnv("BASE_URL", ""),
		Backend:     GetEnv("STORE_BACKEND", BackendFile),
		RootKey:     rootKey,
		DataDir:     GetEnv("DATA_DIR", "data"),
		DatabaseURL: GetEnv("DATABASE_URL", ""),
		SQLitePath:  GetEnv("SQLITE_PATH", "data/vidmark.db"),
		S3: storage.S3Config{
			Endpoint:  GetEnv("S3_ENDPOINT", ""),
			Bucket:    GetEnv("S3_BUCKET", "vidmark"),
			AccessKey: GetEnv("S3_ACCESS_KEY", ""),
			SecretKey: GetEnv("S3_SECRET_KEY", ""),
			Region:    GetEnv("S3_REGION", "eu-central-1"),
			Prefix:    GetEnv("S3_PREFIX", ""),
			RootKey:   rootKey,
		},
		TokenSecret:    GetEnv("API_TOKEN_SECRET", ""),
		AllowedOrigins: GetEnvList("ALLOWED_ORIGINS"),
		LogLevel:       GetEnv("LOG_LEVEL", "info"),
		LogFormat:      GetEnv("LOG_FORMAT", "json"),
		RateLimitRPS:   GetEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: GetEnvInt("RATE_LIMIT_BURST", 40),
		EnableDocs:     GetEnv("API_DOCS_ENABLED", "false") == "true",
	}

	switch cfg.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return cfg, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendS3:
		if cfg.S3.Bucket == "" {
			return cfg, fmt.Errorf("S3_BUCKET is required for the s3 backend")
		}
	default:
		return cfg, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Backend)
	}
	return cfg, nil
}
