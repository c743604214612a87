// Package popup drives one open popup: it ties the page being watched to
// its stored timestamps.
package popup

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/vidmark/vidmark/internal/page"
	"github.com/vidmark/vidmark/internal/timecode"
	"github.com/vidmark/vidmark/internal/timestamp"
	"github.com/vidmark/vidmark/internal/videokey"
)

var ErrNotWatchPage = errors.New("not a video watch page")

// Timestamps is the storage side of a session. *timestamp.Service and
// *client.Client both satisfy it.
type Timestamps interface {
	Get(ctx context.Context, key string) ([]timestamp.Record, error)
	Save(ctx context.Context, key string, rec timestamp.Record) (timestamp.Record, error)
	DeleteByID(ctx context.Context, key, id string) error
}

type Controller struct {
	timestamps Timestamps
	player     page.Player
	now        func() time.Time
}

func NewController(ts Timestamps, player page.Player) *Controller {
	return &Controller{timestamps: ts, player: player, now: time.Now}
}

// SetClock replaces the clock used to stamp pinned records.
func (c *Controller) SetClock(now func() time.Time) {
	c.now = now
}

// Open starts a session for the page the player is showing.
func (c *Controller) Open(ctx context.Context) (*Session, error) {
	pageURL, err := c.player.PageURL(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page url: %w", err)
	}
	if !videokey.IsWatchPage(pageURL) {
		return nil, fmt.Errorf("%w: %s", ErrNotWatchPage, pageURL)
	}

	s := &Session{
		URL:        pageURL,
		Key:        videokey.Derive(pageURL),
		controller: c,
	}

	info, err := c.player.VideoInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("read video info: %w", err)
	}
	s.Title = info.Title
	s.currentTime = info.CurrentTime

	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Session is the state of one popup open. It lives until the popup closes.
type Session struct {
	URL   string
	Key   string
	Title string

	controller *Controller

	mu          sync.Mutex
	currentTime float64
	timestamps  []timestamp.Record
}

// Row is one rendered list entry.
type Row struct {
	Time   string
	Note   string
	Record timestamp.Record
}

// DisplayNote is the note as the list shows it.
func (r Row) DisplayNote() string {
	if r.Note == "" {
		return "No note"
	}
	return r.Note
}

func (s *Session) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTime
}

func (s *Session) Elapsed() string {
	return timecode.Format(s.CurrentTime())
}

func (s *Session) Timestamps() []timestamp.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.timestamps)
}

// Refresh reloads the list from storage. On failure the previous list is kept.
func (s *Session) Refresh(ctx context.Context) error {
	records, err := s.controller.timestamps.Get(ctx, s.Key)
	if err != nil {
		return fmt.Errorf("load timestamps: %w", err)
	}
	s.mu.Lock()
	s.timestamps = records
	s.mu.Unlock()
	return nil
}

// Rows is the current list filtered with FilterRows.
func (s *Session) Rows(filter string) []Row {
	return FilterRows(s.Timestamps(), filter)
}

// FilterRows keeps the records whose note or formatted time contains filter,
// ignoring case. The filter never reaches storage.
func FilterRows(records []timestamp.Record, filter string) []Row {
	needle := strings.ToLower(strings.TrimSpace(filter))

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		formatted := timecode.Format(rec.Time)
		if needle != "" &&
			!strings.Contains(strings.ToLower(rec.Note), needle) &&
			!strings.Contains(formatted, needle) {
			continue
		}
		rows = append(rows, Row{Time: formatted, Note: rec.Note, Record: rec})
	}
	return rows
}

// Pin saves the current playback position with note.
func (s *Session) Pin(ctx context.Context, note string) (timestamp.Record, error) {
	info, err := s.controller.player.VideoInfo(ctx)
	if err != nil {
		return timestamp.Record{}, fmt.Errorf("read video info: %w", err)
	}
	s.setCurrentTime(info.CurrentTime)

	saved, err := s.controller.timestamps.Save(ctx, s.Key, timestamp.Record{
		Time:    info.CurrentTime,
		Note:    strings.TrimSpace(note),
		Created: s.controller.now().UnixMilli(),
	})
	if err != nil {
		return timestamp.Record{}, fmt.Errorf("save timestamp: %w", err)
	}
	return saved, s.Refresh(ctx)
}

// Delete removes the record behind row. It goes by the record's identity,
// so a filtered or stale view can never delete a different record.
func (s *Session) Delete(ctx context.Context, row Row) error {
	if err := s.controller.timestamps.DeleteByID(ctx, s.Key, row.Record.Identity()); err != nil {
		return fmt.Errorf("delete timestamp: %w", err)
	}
	return s.Refresh(ctx)
}

func (s *Session) Seek(ctx context.Context, row Row) error {
	if err := s.controller.player.SeekTo(ctx, row.Record.Time); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	s.setCurrentTime(row.Record.Time)
	return nil
}

// Poll reads the playback position every interval and passes the formatted
// elapsed time to fn. Only the elapsed time is refreshed, never the list.
// A read still in flight when the ticker fires delays the next one instead
// of queueing behind it. Failed reads are skipped. Poll returns when ctx ends.
func (s *Session) Poll(ctx context.Context, interval time.Duration, fn func(elapsed string)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			info, err := s.controller.player.VideoInfo(ctx)
			if err != nil {
				continue
			}
			s.setCurrentTime(info.CurrentTime)
			fn(timecode.Format(info.CurrentTime))
		}
	}
}

func (s *Session) setCurrentTime(t float64) {
	s.mu.Lock()
	s.currentTime = t
	s.mu.Unlock()
}
