package main

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/vidmark/vidmark/internal/server"
	"github.com/vidmark/vidmark/internal/storage"
	"github.com/vidmark/vidmark/internal/timestamp"
)

type cliTestEnv struct {
	svc        *timestamp.Service
	serverURL  string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	svc := timestamp.NewService(storage.NewMemory())
	srv := server.New(server.Config{Timestamps: svc})
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})

	t.Setenv("VIDMARK_SERVER", "")
	t.Setenv("VIDMARK_TOKEN", "")

	return &cliTestEnv{
		svc:        svc,
		serverURL:  ts.URL,
		configPath: t.TempDir() + "/config.toml",
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--config", env.configPath, "--server", env.serverURL}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
