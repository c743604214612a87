package message

import (
	"context"
	"sync"
)

type Handler interface {
	Handle(ctx context.Context, req Request) Response
}

type HandlerFunc func(ctx context.Context, req Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Mux routes requests to handlers by type and echoes the request id.
type Mux struct {
	mu       sync.RWMutex
	handlers map[Type]Handler
}

func NewMux() *Mux {
	return &Mux{handlers: make(map[Type]Handler)}
}

func (m *Mux) Register(t Type, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[t] = h
}

func (m *Mux) RegisterFunc(t Type, fn func(ctx context.Context, req Request) Response) {
	m.Register(t, HandlerFunc(fn))
}

func (m *Mux) Handles(t Type) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.handlers[t]
	return ok
}

func (m *Mux) Handle(ctx context.Context, req Request) Response {
	m.mu.RLock()
	h, ok := m.handlers[req.Type]
	m.mu.RUnlock()

	var resp Response
	if ok {
		resp = h.Handle(ctx, req)
	} else {
		resp = Fail(KindInvalidRequest, UnknownType)
	}
	resp.RequestID = req.RequestID
	return resp
}
