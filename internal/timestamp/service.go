package timestamp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vidmark/vidmark/internal/storage"
	"github.com/vidmark/vidmark/internal/validate"
)

var (
	ErrInvalidIndex  = errors.New("invalid timestamp index")
	ErrNotFound      = errors.New("timestamp not found")
	ErrInvalidRecord = errors.New("invalid timestamp")
)

// Service reads and writes timestamp lists. Every write rewrites the whole
// document through storage.Blob.Update, so concurrent writes never lose an
// update.
type Service struct {
	blob   storage.Blob
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(blob storage.Blob, opts ...Option) *Service {
	s := &Service{
		blob:   blob,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks that the backing document can be read.
func (s *Service) Ping(ctx context.Context) error {
	_, err := s.blob.Load(ctx)
	return err
}

// Get returns the records for key sorted by time. An unknown key yields an
// empty list.
func (s *Service) Get(ctx context.Context, key string) ([]Record, error) {
	doc, err := s.load(ctx)
	if err != nil {
		s.logFailure("get", key, err)
		return nil, err
	}
	records := doc[key]
	if len(records) == 0 {
		return []Record{}, nil
	}
	return slices.Clone(records), nil
}

// Keys returns every video key that has at least one record.
func (s *Service) Keys(ctx context.Context) ([]string, error) {
	doc, err := s.load(ctx)
	if err != nil {
		s.logFailure("keys", "", err)
		return nil, err
	}
	keys := make([]string, 0, len(doc))
	for k, records := range doc {
		if len(records) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Save appends rec to the list for key and returns it as stored, with its
// note normalized and its id and creation time filled in.
func (s *Service) Save(ctx context.Context, key string, rec Record) (Record, error) {
	rec, err := s.prepare(key, rec)
	if err != nil {
		return Record{}, err
	}

	err = s.blob.Update(ctx, func(current []byte) ([]byte, error) {
		doc, err := decode(current)
		if err != nil {
			return nil, err
		}
		records := append(doc[key], rec)
		sortByTime(records)
		doc[key] = records
		return doc.encode()
	})
	if err != nil {
		s.logFailure("save", key, err)
		return Record{}, err
	}

	s.logger.Debug("timestamp saved", "key", key, "id", rec.ID, "time", rec.Time)
	return rec, nil
}

// Delete removes the record at index in the current list for key.
func (s *Service) Delete(ctx context.Context, key string, index int) error {
	err := s.remove(ctx, key, func(records []Record) (int, error) {
		if index < 0 || index >= len(records) {
			return 0, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
		}
		return index, nil
	})
	if err != nil {
		s.logFailure("delete", key, err)
	}
	return err
}

// DeleteByID removes the record whose Identity is id.
func (s *Service) DeleteByID(ctx context.Context, key, id string) error {
	err := s.remove(ctx, key, func(records []Record) (int, error) {
		for i, r := range records {
			if r.Identity() == id {
				return i, nil
			}
		}
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	})
	if err != nil {
		s.logFailure("delete", key, err)
	}
	return err
}

// remove deletes the record chosen by pick. A list emptied by the delete is
// dropped from the document.
func (s *Service) remove(ctx context.Context, key string, pick func([]Record) (int, error)) error {
	return s.blob.Update(ctx, func(current []byte) ([]byte, error) {
		doc, err := decode(current)
		if err != nil {
			return nil, err
		}
		records := doc[key]
		i, err := pick(records)
		if err != nil {
			return nil, err
		}
		records = slices.Delete(records, i, i+1)
		if len(records) == 0 {
			delete(doc, key)
		} else {
			doc[key] = records
		}
		return doc.encode()
	})
}

func (s *Service) prepare(key string, rec Record) (Record, error) {
	if key == "" {
		return Record{}, fmt.Errorf("%w: video key is required", ErrInvalidRecord)
	}
	if msg := validate.VideoKey(key); msg != "" {
		return Record{}, fmt.Errorf("%w: %s", ErrInvalidRecord, msg)
	}
	if rec.Time < 0 || math.IsNaN(rec.Time) || math.IsInf(rec.Time, 0) {
		return Record{}, fmt.Errorf("%w: time must be a non-negative number of seconds", ErrInvalidRecord)
	}
	if msg := validate.Time(rec.Time); msg != "" {
		return Record{}, fmt.Errorf("%w: %s", ErrInvalidRecord, msg)
	}

	rec.Note = NormalizeNote(rec.Note)
	if msg := validate.Note(rec.Note); msg != "" {
		return Record{}, fmt.Errorf("%w: %s", ErrInvalidRecord, msg)
	}
	if rec.Created <= 0 {
		rec.Created = s.now().UnixMilli()
	}
	if rec.ID == "" {
		rec.ID = s.newID()
	}
	return rec, nil
}

func (s *Service) load(ctx context.Context) (document, error) {
	data, err := s.blob.Load(ctx)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

func (s *Service) logFailure(op, key string, err error) {
	if errors.Is(err, storage.ErrStorage) {
		s.logger.Error("timestamp storage failure", "op", op, "key", key, "error", err)
	}
}
