// Package page reads and controls the video element of a page open in a
// real browser.
package page

import (
	"context"
	"errors"

	"github.com/vidmark/vidmark/internal/message"
)

var ErrNoVideo = errors.New("no video found")

const untitledVideo = "Untitled Video"

type VideoInfo struct {
	CurrentTime float64 `json:"currentTime"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
}

// Player is the page side of a popup session. Implementations keep no state
// between calls.
type Player interface {
	PageURL(ctx context.Context) (string, error)
	VideoInfo(ctx context.Context) (VideoInfo, error)
	SeekTo(ctx context.Context, seconds float64) error
}

// Register installs the GET_VIDEO_INFO and SEEK_TO handlers for player on mux.
func Register(mux *message.Mux, player Player) {
	mux.RegisterFunc(message.TypeGetVideoInfo, func(ctx context.Context, req message.Request) message.Response {
		info, err := player.VideoInfo(ctx)
		if err != nil {
			return failure(err)
		}
		return message.OK(info)
	})

	mux.RegisterFunc(message.TypeSeekTo, func(ctx context.Context, req message.Request) message.Response {
		if req.Time == nil || *req.Time < 0 {
			return message.FailMessage(message.KindInvalidRequest, "time must be a non-negative number of seconds")
		}
		if err := player.SeekTo(ctx, *req.Time); err != nil {
			return failure(err)
		}
		return message.Response{Success: true}
	})
}

func failure(err error) message.Response {
	if errors.Is(err, ErrNoVideo) {
		return message.FailMessage(message.KindNotFound, "No video found")
	}
	return message.FailMessage(message.KindInvalidRequest, err.Error())
}
