// Package client talks to a vidmark server over its message endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vidmark/vidmark/internal/message"
	"github.com/vidmark/vidmark/internal/storage"
	"github.com/vidmark/vidmark/internal/timestamp"
)

var ErrRequestMismatch = errors.New("response does not match request")

type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts one message and returns the envelope answering it. Failed
// envelopes come back without an error; call Err on them.
func (c *Client) Send(ctx context.Context, msg message.Request) (message.Envelope, error) {
	if msg.RequestID == "" {
		msg.RequestID = uuid.NewString()
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return message.Envelope{}, fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/messages", bytes.NewReader(body))
	if err != nil {
		return message.Envelope{}, fmt.Errorf("create message request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return message.Envelope{}, fmt.Errorf("message request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return message.Envelope{}, fmt.Errorf("read message response: %w", err)
	}

	var env message.Envelope
	if err := json.Unmarshal(respBody, &env); err != nil || (env.RequestID == "" && resp.StatusCode != http.StatusOK) {
		return message.Envelope{}, statusError(resp.StatusCode, respBody)
	}
	if env.RequestID != msg.RequestID {
		return message.Envelope{}, fmt.Errorf("%w: sent %s, got %q", ErrRequestMismatch, msg.RequestID, env.RequestID)
	}
	return env, nil
}

func (c *Client) Get(ctx context.Context, key string) ([]timestamp.Record, error) {
	env, err := c.call(ctx, message.Request{Type: message.TypeGetTimestamps, URL: key})
	if err != nil {
		return nil, err
	}
	records := []timestamp.Record{}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &records); err != nil {
			return nil, fmt.Errorf("decode timestamps: %w", err)
		}
	}
	return records, nil
}

func (c *Client) Save(ctx context.Context, key string, rec timestamp.Record) (timestamp.Record, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return timestamp.Record{}, fmt.Errorf("marshal timestamp: %w", err)
	}
	env, err := c.call(ctx, message.Request{Type: message.TypeSaveTimestamp, URL: key, Data: data})
	if err != nil {
		return timestamp.Record{}, err
	}
	var saved timestamp.Record
	if err := json.Unmarshal(env.Data, &saved); err != nil {
		return timestamp.Record{}, fmt.Errorf("decode saved timestamp: %w", err)
	}
	return saved, nil
}

func (c *Client) Delete(ctx context.Context, key string, index int) error {
	_, err := c.call(ctx, message.Request{Type: message.TypeDeleteTimestamp, URL: key, Index: &index})
	return err
}

func (c *Client) DeleteByID(ctx context.Context, key, id string) error {
	_, err := c.call(ctx, message.Request{Type: message.TypeDeleteTimestampByID, URL: key, ID: id})
	return err
}

func (c *Client) Keys(ctx context.Context) ([]string, error) {
	var result struct {
		Keys []string `json:"keys"`
	}
	if err := c.getJSON(ctx, "/api/keys", &result); err != nil {
		return nil, err
	}
	return result.Keys, nil
}

// VideoKey asks the server which storage key pageURL maps to.
func (c *Client) VideoKey(ctx context.Context, pageURL string) (string, error) {
	var result struct {
		Key string `json:"key"`
	}
	if err := c.getJSON(ctx, "/api/videokey?url="+url.QueryEscape(pageURL), &result); err != nil {
		return "", err
	}
	return result.Key, nil
}

// call sends msg and turns a failed envelope into an error matching the
// service's own sentinel errors.
func (c *Client) call(ctx context.Context, msg message.Request) (message.Envelope, error) {
	env, err := c.Send(ctx, msg)
	if err != nil {
		return env, err
	}
	if err := env.Err(); err != nil {
		return env, translate(err)
	}
	return env, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return statusError(resp.StatusCode, respBody)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func translate(err error) error {
	var msgErr *message.Error
	if !errors.As(err, &msgErr) {
		return err
	}
	switch msgErr.Kind {
	case message.KindInvalidIndex:
		return fmt.Errorf("%w: %w", timestamp.ErrInvalidIndex, err)
	case message.KindNotFound:
		return fmt.Errorf("%w: %w", timestamp.ErrNotFound, err)
	case message.KindInvalidRequest:
		return fmt.Errorf("%w: %w", timestamp.ErrInvalidRecord, err)
	case message.KindStorageFailure:
		return fmt.Errorf("%w: %w", storage.ErrStorage, err)
	default:
		return err
	}
}

func statusError(status int, body []byte) error {
	if len(body) > 1024 {
		body = body[:1024]
	}
	return fmt.Errorf("server returned %d: %s", status, strings.TrimSpace(string(body)))
}
