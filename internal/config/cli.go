package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// CLI holds vidmarkctl settings. Flags override whatever the file sets.
type CLI struct {
	ServerURL    string `toml:"server_url"`
	Token        string `toml:"token"`
	ControlURL   string `toml:"browser_control_url"`
	Headless     bool   `toml:"headless"`
	PollInterval string `toml:"poll_interval"`
}

func DefaultCLI() CLI {
	return CLI{
		ServerURL:    "http://localhost:8080",
		Headless:     false,
		PollInterval: "1s",
	}
}

// DefaultCLIPath is ~/.config/vidmark/config.toml, or "" when no config dir exists.
func DefaultCLIPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "vidmark", "config.toml")
}

// LoadCLI reads path over the defaults. A missing file yields the defaults.
func LoadCLI(path string) (CLI, error) {
	cfg := DefaultCLI()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
