package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/vidmark/vidmark/internal/client"
	"github.com/vidmark/vidmark/internal/config"
	"github.com/vidmark/vidmark/internal/logger"
	"github.com/vidmark/vidmark/internal/page"
)

type globalFlags struct {
	config  string
	server  string
	token   string
	browser string
	json    bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     config.CLI
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig loads the config file once and lays flags and environment
// over it.
func (c *commandContext) ensureConfig() (config.CLI, error) {
	c.configOnce.Do(func() {
		path := strings.TrimSpace(c.flags.config)
		if path == "" {
			path = config.DefaultCLIPath()
		}
		cfg, err := config.LoadCLI(path)
		if err != nil {
			c.configErr = err
			return
		}
		cfg.ServerURL = firstNonEmpty(c.flags.server, config.GetEnv("VIDMARK_SERVER", ""), cfg.ServerURL)
		cfg.Token = firstNonEmpty(c.flags.token, config.GetEnv("VIDMARK_TOKEN", ""), cfg.Token)
		cfg.ControlURL = firstNonEmpty(c.flags.browser, cfg.ControlURL)
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) client() (*client.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("no server configured; pass --server or set server_url")
	}
	return client.New(cfg.ServerURL, cfg.Token), nil
}

func (c *commandContext) pollInterval() time.Duration {
	cfg, _ := c.ensureConfig()
	d, err := time.ParseDuration(cfg.PollInterval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// withTab opens pageURL in a browser tab, runs fn and tears both down.
func (c *commandContext) withTab(ctx context.Context, cmd *cobra.Command, pageURL string, fn func(*page.Tab) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	browser, err := page.Launch(ctx, page.BrowserConfig{
		ControlURL: cfg.ControlURL,
		Headless:   cfg.Headless,
		Logger:     logger.NewWithWriter(cmd.ErrOrStderr(), "warn", "text"),
	})
	if err != nil {
		return err
	}
	defer func() { _ = browser.Close() }()

	tab, err := browser.Open(ctx, pageURL)
	if err != nil {
		return err
	}
	defer func() { _ = tab.Close() }()

	return fn(tab)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
