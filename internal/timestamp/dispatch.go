package timestamp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/vidmark/vidmark/internal/message"
	"github.com/vidmark/vidmark/internal/storage"
)

// Register installs the timestamp message handlers on mux.
func (s *Service) Register(mux *message.Mux) {
	mux.RegisterFunc(message.TypeGetTimestamps, s.handleGet)
	mux.RegisterFunc(message.TypeSaveTimestamp, s.handleSave)
	mux.RegisterFunc(message.TypeDeleteTimestamp, s.handleDelete)
	mux.RegisterFunc(message.TypeDeleteTimestampByID, s.handleDeleteByID)
}

func (s *Service) handleGet(ctx context.Context, req message.Request) message.Response {
	records, err := s.Get(ctx, req.URL)
	if err != nil {
		return failure(err)
	}
	return message.OK(records)
}

func (s *Service) handleSave(ctx context.Context, req message.Request) message.Response {
	if len(req.Data) == 0 {
		return message.Fail(message.KindInvalidRequest, "timestamp data is required")
	}
	var rec Record
	if err := json.Unmarshal(req.Data, &rec); err != nil {
		return message.Fail(message.KindInvalidRequest, "invalid timestamp data")
	}
	saved, err := s.Save(ctx, req.URL, rec)
	if err != nil {
		return failure(err)
	}
	return message.OK(saved)
}

func (s *Service) handleDelete(ctx context.Context, req message.Request) message.Response {
	if req.Index == nil {
		return message.Fail(message.KindInvalidRequest, "index is required")
	}
	if err := s.Delete(ctx, req.URL, *req.Index); err != nil {
		return failure(err)
	}
	return message.Response{Success: true}
}

func (s *Service) handleDeleteByID(ctx context.Context, req message.Request) message.Response {
	if req.ID == "" {
		return message.Fail(message.KindInvalidRequest, "id is required")
	}
	if err := s.DeleteByID(ctx, req.URL, req.ID); err != nil {
		return failure(err)
	}
	return message.Response{Success: true}
}

func failure(err error) message.Response {
	switch {
	case errors.Is(err, ErrInvalidIndex):
		return message.Fail(message.KindInvalidIndex, "Invalid timestamp index")
	case errors.Is(err, ErrNotFound):
		return message.Fail(message.KindNotFound, "Timestamp not found")
	case errors.Is(err, ErrInvalidRecord):
		return message.Fail(message.KindInvalidRequest, err.Error())
	case errors.Is(err, storage.ErrStorage):
		return message.Fail(message.KindStorageFailure, "Storage failure")
	default:
		return message.Fail(message.KindStorageFailure, err.Error())
	}
}
