package timestamp

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/vidmark/vidmark/internal/message"
	"github.com/vidmark/vidmark/internal/storage"
)

type recordingObserver struct {
	mu   sync.Mutex
	seen []string
}

func (o *recordingObserver) ObserveMessage(msgType, result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, msgType+"/"+result)
}

func newTestRouter(t *testing.T, svc *Service) (chi.Router, *recordingObserver) {
	t.Helper()
	h := NewHandler(svc)
	obs := &recordingObserver{}
	h.SetObserver(obs)

	r := chi.NewRouter()
	r.Post("/api/messages", h.Messages)
	r.Get("/api/timestamps", h.List)
	r.Post("/api/timestamps", h.Create)
	r.Delete("/api/timestamps/{index}", h.DeleteAt)
	r.Delete("/api/timestamps/id/{id}", h.DeleteByID)
	r.Get("/api/keys", h.Keys)
	r.Get("/api/videokey", h.VideoKey)
	r.Get("/api/limits", h.Limits)
	return r, obs
}

func doRequest(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestMessagesEndpointRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	r, obs := newTestRouter(t, svc)

	save := doRequest(r, http.MethodPost, "/api/messages",
		`{"type":"SAVE_TIMESTAMP","requestId":"req-1","url":"yt:abc","data":{"time":42,"note":"drop"}}`)
	if save.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", save.Code, save.Body.String())
	}

	var env message.Envelope
	if err := json.Unmarshal(save.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !env.Success || env.RequestID != "req-1" {
		t.Errorf("expected success echoing req-1, got %+v", env)
	}

	get := doRequest(r, http.MethodPost, "/api/messages", `{"type":"GET_TIMESTAMPS","url":"yt:abc"}`)
	if err := json.Unmarshal(get.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	var records []Record
	if err := json.Unmarshal(env.Data, &records); err != nil {
		t.Fatalf("failed to parse records: %v", err)
	}
	if len(records) != 1 || records[0].Time != 42 || records[0].Note != "drop" {
		t.Errorf("unexpected records %+v", records)
	}

	want := []string{"SAVE_TIMESTAMP/ok", "GET_TIMESTAMPS/ok"}
	if strings.Join(obs.seen, ",") != strings.Join(want, ",") {
		t.Errorf("expected observed %v, got %v", want, obs.seen)
	}
}

func TestMessagesEndpointStatusFollowsKind(t *testing.T) {
	svc, _ := newTestService(t)
	r, obs := newTestRouter(t, svc)

	tests := []struct {
		name   string
		body   string
		status int
		error  string
	}{
		{"unknown type", `{"type":"PLAY"}`, http.StatusBadRequest, message.UnknownType},
		{"bad index", `{"type":"DELETE_TIMESTAMP","url":"yt:abc","index":3}`, http.StatusNotFound, "Invalid timestamp index"},
		{"missing id", `{"type":"DELETE_TIMESTAMP_BY_ID","url":"yt:abc","id":"nope"}`, http.StatusNotFound, "Timestamp not found"},
		{"bad record", `{"type":"SAVE_TIMESTAMP","url":"yt:abc","data":{"time":-1}}`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(r, http.MethodPost, "/api/messages", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			var env message.Envelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("failed to parse response: %v", err)
			}
			if env.Success {
				t.Error("expected failure envelope")
			}
			if tt.error != "" && env.Error != tt.error {
				t.Errorf("expected error %q, got %q", tt.error, env.Error)
			}
		})
	}

	if obs.seen[0] != "PLAY/invalid_request" {
		t.Errorf("expected unknown type observed as invalid_request, got %q", obs.seen[0])
	}
}

func TestMessagesEndpointRejectsMalformedBody(t *testing.T) {
	svc, _ := newTestService(t)
	r, _ := newTestRouter(t, svc)

	tests := []struct {
		name      string
		body      string
		requestID string
	}{
		{"truncated json", `{"type":`, ""},
		{"wrong field type", `{"type":"DELETE_TIMESTAMP","requestId":"req-9","index":"two"}`, "req-9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(r, http.MethodPost, "/api/messages", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", rec.Code)
			}
			var resp message.Response
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to parse envelope: %v", err)
			}
			if resp.Success || resp.Kind != message.KindInvalidRequest || resp.Error == "" {
				t.Errorf("expected invalid_request envelope, got %+v", resp)
			}
			if resp.RequestID != tt.requestID {
				t.Errorf("expected requestId %q, got %q", tt.requestID, resp.RequestID)
			}
		})
	}
}

func TestRESTCreateListDelete(t *testing.T) {
	svc, _ := newTestService(t)
	r, _ := newTestRouter(t, svc)

	for _, body := range []string{`{"time":90,"note":"b"}`, `{"time":30,"note":"a"}`, `{"time":60,"note":"c"}`} {
		rec := doRequest(r, http.MethodPost, "/api/timestamps?url=yt:abc", body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	list := doRequest(r, http.MethodGet, "/api/timestamps?url=yt:abc", "")
	var records []Record
	if err := json.Unmarshal(list.Body.Bytes(), &records); err != nil {
		t.Fatalf("failed to parse records: %v", err)
	}
	if len(records) != 3 || records[0].Note != "a" || records[2].Note != "b" {
		t.Fatalf("expected sorted records, got %+v", records)
	}

	if rec := doRequest(r, http.MethodDelete, "/api/timestamps/0?url=yt:abc", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	target := "/api/timestamps/id/" + records[1].ID + "?url=yt:abc"
	if rec := doRequest(r, http.MethodDelete, target, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}

	remaining, err := svc.Get(t.Context(), "yt:abc")
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 || remaining[0].Note != "b" {
		t.Errorf("expected only b left, got %+v", remaining)
	}
}

func TestRESTErrors(t *testing.T) {
	svc, _ := newTestService(t)
	r, _ := newTestRouter(t, svc)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
	}{
		{"list without url", http.MethodGet, "/api/timestamps", "", http.StatusBadRequest},
		{"create bad body", http.MethodPost, "/api/timestamps?url=yt:abc", `nope`, http.StatusBadRequest},
		{"create bad time", http.MethodPost, "/api/timestamps?url=yt:abc", `{"time":-5}`, http.StatusBadRequest},
		{"delete non-integer", http.MethodDelete, "/api/timestamps/first?url=yt:abc", "", http.StatusBadRequest},
		{"delete out of range", http.MethodDelete, "/api/timestamps/0?url=yt:abc", "", http.StatusNotFound},
		{"delete unknown id", http.MethodDelete, "/api/timestamps/id/x?url=yt:abc", "", http.StatusNotFound},
		{"videokey without url", http.MethodGet, "/api/videokey", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(r, tt.method, tt.target, tt.body)
			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRESTStorageFailure(t *testing.T) {
	svc := NewService(failingBlob{err: errors.Join(storage.ErrStorage, errors.New("disk gone"))})
	r, _ := newTestRouter(t, svc)

	rec := doRequest(r, http.MethodGet, "/api/timestamps?url=yt:abc", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("Storage failure")) {
		t.Errorf("expected storage failure text, got %s", rec.Body.String())
	}
}

func TestKeysAndVideoKey(t *testing.T) {
	svc, _ := newTestService(t)
	r, _ := newTestRouter(t, svc)
	mustSave(t, svc, "yt:b", Record{Time: 1})
	mustSave(t, svc, "yt:a", Record{Time: 2})

	var keys struct {
		Keys []string `json:"keys"`
	}
	rec := doRequest(r, http.MethodGet, "/api/keys", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &keys); err != nil {
		t.Fatalf("failed to parse keys: %v", err)
	}
	if strings.Join(keys.Keys, ",") != "yt:a,yt:b" {
		t.Errorf("expected sorted keys, got %v", keys.Keys)
	}

	var derived struct {
		Key       string `json:"key"`
		WatchPage bool   `json:"watchPage"`
	}
	rec = doRequest(r, http.MethodGet, "/api/videokey?url=https%3A%2F%2Fwww.youtube.com%2Fwatch%3Fv%3Ddq4nTKlEbbs", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &derived); err != nil {
		t.Fatalf("failed to parse videokey: %v", err)
	}
	if derived.Key != "yt:dq4nTKlEbbs" || !derived.WatchPage {
		t.Errorf("unexpected derived key %+v", derived)
	}
}

func TestLimits(t *testing.T) {
	svc, _ := newTestService(t)
	r, _ := newTestRouter(t, svc)

	var limits map[string]int
	rec := doRequest(r, http.MethodGet, "/api/limits", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &limits); err != nil {
		t.Fatalf("failed to parse limits: %v", err)
	}
	if limits["note"] != 1000 {
		t.Errorf("expected note limit 1000, got %d", limits["note"])
	}
}
