package storage

import (
	"context"
	"sync"
)

// Memory keeps the document in process. Nothing survives a restart.
type Memory struct {
	mu   sync.Mutex
	data []byte
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

func (m *Memory) Update(ctx context.Context, fn func([]byte) ([]byte, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return wrap("update", err)
	}

	var current []byte
	if m.data != nil {
		current = append([]byte(nil), m.data...)
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	m.data = append([]byte(nil), next...)
	return nil
}
