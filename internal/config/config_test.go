package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("VIDMARK_TEST_STR", "hello")
	t.Setenv("VIDMARK_TEST_INT", "42")
	t.Setenv("VIDMARK_TEST_BAD_INT", "x")
	t.Setenv("VIDMARK_TEST_FLOAT", "2.5")
	t.Setenv("VIDMARK_TEST_LIST", " chrome-extension://abc , ,https://example.com ")

	if got := GetEnv("VIDMARK_TEST_STR", "d"); got != "hello" {
		t.Errorf("GetEnv = %q", got)
	}
	if got := GetEnv("VIDMARK_TEST_UNSET", "d"); got != "d" {
		t.Errorf("GetEnv fallback = %q", got)
	}
	if got := GetEnvInt("VIDMARK_TEST_INT", 1); got != 42 {
		t.Errorf("GetEnvInt = %d", got)
	}
	if got := GetEnvInt("VIDMARK_TEST_BAD_INT", 7); got != 7 {
		t.Errorf("GetEnvInt fallback = %d", got)
	}
	if got := GetEnvFloat("VIDMARK_TEST_FLOAT", 1); got != 2.5 {
		t.Errorf("GetEnvFloat = %v", got)
	}
	list := GetEnvList("VIDMARK_TEST_LIST")
	if len(list) != 2 || list[0] != "chrome-extension://abc" || list[1] != "https://example.com" {
		t.Errorf("GetEnvList = %q", list)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("VIDMARK_DOTENV_VALUE=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VIDMARK_DOTENV_VALUE", "")
	os.Unsetenv("VIDMARK_DOTENV_VALUE")

	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := os.Getenv("VIDMARK_DOTENV_VALUE"); got != "from-file" {
		t.Errorf("expected value from .env file, got %q", got)
	}
}

func TestServerFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_BACKEND", "ROOT_KEY", "DATABASE_URL", "API_TOKEN_SECRET", "API_DOCS_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg, err := ServerFromEnv()
	if err != nil {
		t.Fatalf("ServerFromEnv: %v", err)
	}
	if cfg.Port != "8080" || cfg.Backend != BackendFile || cfg.RootKey != "video_timestamps" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.S3.RootKey != cfg.RootKey {
		t.Errorf("expected s3 root key to follow ROOT_KEY")
	}
	if cfg.EnableDocs {
		t.Error("expected docs disabled by default")
	}

	t.Setenv("API_DOCS_ENABLED", "true")
	cfg, err = ServerFromEnv()
	if err != nil {
		t.Fatalf("ServerFromEnv: %v", err)
	}
	if !cfg.EnableDocs {
		t.Error("expected API_DOCS_ENABLED=true to enable docs")
	}
}

func TestServerFromEnvValidatesBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")
	if _, err := ServerFromEnv(); err == nil {
		t.Error("expected error for postgres without DATABASE_URL")
	}

	t.Setenv("STORE_BACKEND", "floppy")
	if _, err := ServerFromEnv(); err == nil {
		t.Error("expected error for unknown backend")
	}

	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/vidmark")
	if _, err := ServerFromEnv(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadCLI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `server_url = "https://marks.example.com"
token = "secret-token"
headless = true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadCLI(path)
	if err != nil {
		t.Fatalf("LoadCLI: %v", err)
	}
	if cfg.ServerURL != "https://marks.example.com" || cfg.Token != "secret-token" || !cfg.Headless {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.PollInterval != "1s" {
		t.Errorf("expected default poll interval kept, got %q", cfg.PollInterval)
	}
}

func TestLoadCLIMissingFile(t *testing.T) {
	cfg, err := LoadCLI(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadCLI: %v", err)
	}
	if cfg != DefaultCLI() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadCLIInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("server_url = ["), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCLI(path); err == nil {
		t.Error("expected parse error")
	}
}
