// Package message defines the request/response envelope exchanged between
// the popup, the page adapter and the timestamp service.
package message

import (
	"encoding/json"
	"net/http"
)

type Type string

const (
	TypeGetVideoInfo        Type = "GET_VIDEO_INFO"
	TypeSeekTo              Type = "SEEK_TO"
	TypeGetTimestamps       Type = "GET_TIMESTAMPS"
	TypeSaveTimestamp       Type = "SAVE_TIMESTAMP"
	TypeDeleteTimestamp     Type = "DELETE_TIMESTAMP"
	TypeDeleteTimestampByID Type = "DELETE_TIMESTAMP_BY_ID"
)

// UnknownType is the error text for a type no handler is registered for.
const UnknownType = "Unknown message type"

// Kind classifies a failed response.
type Kind string

const (
	KindInvalidRequest Kind = "invalid_request"
	KindNotFound       Kind = "not_found"
	KindInvalidIndex   Kind = "invalid_index"
	KindStorageFailure Kind = "storage_failure"
)

// HTTPStatus maps a failure kind onto the status an HTTP transport replies with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindNotFound, KindInvalidIndex:
		return http.StatusNotFound
	case KindStorageFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

type Request struct {
	Type      Type            `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	URL       string          `json:"url,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Index     *int            `json:"index,omitempty"`
	ID        string          `json:"id,omitempty"`
	Time      *float64        `json:"time,omitempty"`
}

type Response struct {
	Success   bool   `json:"success"`
	RequestID string `json:"requestId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
	Kind      Kind   `json:"kind,omitempty"`
}

// Status is the HTTP status for r.
func (r Response) Status() int {
	if r.Success {
		return http.StatusOK
	}
	if r.Kind == "" {
		return http.StatusBadRequest
	}
	return r.Kind.HTTPStatus()
}

func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// Fail builds a failure carried in the error field.
func Fail(kind Kind, text string) Response {
	return Response{Kind: kind, Error: text}
}

// FailMessage builds a failure carried in the message field, which is how
// the page adapter reports problems.
func FailMessage(kind Kind, text string) Response {
	return Response{Kind: kind, Message: text}
}

// Envelope is a Response as decoded by a receiver that unpacks Data itself.
type Envelope struct {
	Success   bool            `json:"success"`
	RequestID string          `json:"requestId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	Message   string          `json:"message,omitempty"`
	Kind      Kind            `json:"kind,omitempty"`
}

// Err returns nil for a successful envelope.
func (e Envelope) Err() error {
	if e.Success {
		return nil
	}
	text := e.Error
	if text == "" {
		text = e.Message
	}
	return &Error{Kind: e.Kind, Text: text}
}

// Error is a failed response surfaced as a Go error.
type Error struct {
	Kind Kind
	Text string
}

func (e *Error) Error() string {
	if e.Kind == "" {
		return e.Text
	}
	return string(e.Kind) + ": " + e.Text
}
