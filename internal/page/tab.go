package page

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
)

// videoInfoScript reports the first video element and the best title it
// can find, as a JSON string.
const videoInfoScript = `() => {
	const video = document.querySelector('video');
	if (!video) return JSON.stringify({found: false});

	const selectors = [
		'h1.ytd-video-primary-info-renderer',
		'h1.ytd-watch-metadata',
		'#title h1',
	];
	let title = '';
	for (const sel of selectors) {
		const el = document.querySelector(sel);
		if (el && el.textContent.trim()) { title = el.textContent.trim(); break; }
	}
	if (!title) {
		const og = document.querySelector('meta[property="og:title"]');
		if (og && og.content) title = og.content.trim();
	}
	if (!title) title = document.title.trim();

	return JSON.stringify({
		found: true,
		currentTime: video.currentTime,
		title: title,
		url: window.location.href,
	});
}`

const seekScript = `(t) => {
	const video = document.querySelector('video');
	if (!video) return false;
	video.currentTime = t;
	return true;
}`

// Tab is a Player backed by a rod page.
type Tab struct {
	page *rod.Page
}

func NewTab(p *rod.Page) *Tab {
	return &Tab{page: p}
}

func (t *Tab) PageURL(ctx context.Context) (string, error) {
	info, err := t.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("page: target info: %w", err)
	}
	return info.URL, nil
}

func (t *Tab) VideoInfo(ctx context.Context) (VideoInfo, error) {
	res, err := t.page.Context(ctx).Eval(videoInfoScript)
	if err != nil {
		return VideoInfo{}, fmt.Errorf("page: read video: %w", err)
	}
	return parseVideoInfo(res.Value.Str())
}

func (t *Tab) SeekTo(ctx context.Context, seconds float64) error {
	res, err := t.page.Context(ctx).Eval(seekScript, seconds)
	if err != nil {
		return fmt.Errorf("page: seek: %w", err)
	}
	if !res.Value.Bool() {
		return ErrNoVideo
	}
	return nil
}

func (t *Tab) Close() error {
	if t.page != nil {
		return t.page.Close()
	}
	return nil
}

type scriptResult struct {
	Found       bool    `json:"found"`
	CurrentTime float64 `json:"currentTime"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
}

func parseVideoInfo(raw string) (VideoInfo, error) {
	var r scriptResult
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return VideoInfo{}, fmt.Errorf("page: decode video info: %w", err)
	}
	if !r.Found {
		return VideoInfo{}, ErrNoVideo
	}
	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = untitledVideo
	}
	return VideoInfo{CurrentTime: r.CurrentTime, Title: title, URL: r.URL}, nil
}
