package server

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func newLoggedRouter(buf *bytes.Buffer) chi.Router {
	logger := slog.New(slog.NewTextHandler(buf, nil))
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(slogMiddleware(logger))
	return r
}

func TestSlogMiddleware_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	r := newLoggedRouter(&buf)
	r.Get("/api/keys", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/keys", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	output := buf.String()
	if output == "" {
		t.Fatal("expected log output, got empty string")
	}

	expectedFields := []string{
		"level=INFO",
		"method=GET",
		"path=/api/keys",
		"status=200",
		"remote_addr=",
		"duration_ms=",
		"request_id=",
	}
	for _, field := range expectedFields {
		if !bytes.Contains([]byte(output), []byte(field)) {
			t.Errorf("expected log to contain %q, got: %s", field, output)
		}
	}
	if bytes.Contains([]byte(output), []byte(`request_id=""`)) {
		t.Errorf("expected a request id, got: %s", output)
	}
}

func TestSlogMiddleware_SkipsQuietPaths(t *testing.T) {
	for _, path := range []string{"/api/health", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			var buf bytes.Buffer
			r := newLoggedRouter(&buf)
			r.Get(path, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

			if rec.Code != http.StatusOK {
				t.Errorf("expected status 200, got %d", rec.Code)
			}
			if buf.Len() != 0 {
				t.Errorf("expected no log output for %s, got: %s", path, buf.String())
			}
		})
	}
}

func TestSlogMiddleware_ServerErrorsLogAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	r := newLoggedRouter(&buf)
	r.Get("/api/timestamps", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/timestamps", nil))

	output := buf.String()
	if !bytes.Contains([]byte(output), []byte("status=500")) || !bytes.Contains([]byte(output), []byte("level=ERROR")) {
		t.Errorf("expected error level log with status=500, got: %s", output)
	}
}

func TestSlogMiddleware_LogsNon200Status(t *testing.T) {
	var buf bytes.Buffer
	r := newLoggedRouter(&buf)
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	if !bytes.Contains(buf.Bytes(), []byte("status=404")) {
		t.Errorf("expected log to contain status=404, got: %s", buf.String())
	}
}
