// Package videokey derives the stable key timestamps are stored under for a
// video page URL.
package videokey

import (
	"net/url"
	"regexp"
	"strings"
)

const youtubePrefix = "yt:"

var youtubeHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
}

// YouTube ids are 11 characters, but anything URL-safe is accepted so that
// keys stay stable if the format ever changes.
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// pathPrefixes are YouTube paths whose next segment is the video id.
var pathPrefixes = []string{"/shorts/", "/embed/", "/live/", "/v/"}

// Derive returns the key for rawURL. Id-based keys win over the raw URL so
// that different query orderings or extra parameters such as t=5 map to the
// same key. A URL without an extractable id maps to itself.
func Derive(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	host := strings.ToLower(u.Hostname())

	if id, ok := youtubeID(host, u); ok {
		return youtubePrefix + id
	}

	if v := u.Query().Get("v"); v != "" && videoIDPattern.MatchString(v) {
		return "v:" + host + ":" + v
	}

	return rawURL
}

// IsWatchPage reports whether rawURL points at a single video we can derive
// an id-based key for.
func IsWatchPage(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	_, ok := youtubeID(strings.ToLower(u.Hostname()), u)
	return ok
}

func youtubeID(host string, u *url.URL) (string, bool) {
	if host == "youtu.be" {
		return validID(strings.Trim(u.Path, "/"))
	}
	if !youtubeHosts[host] {
		return "", false
	}
	if u.Path == "/watch" {
		return validID(u.Query().Get("v"))
	}
	for _, prefix := range pathPrefixes {
		if rest, found := strings.CutPrefix(u.Path, prefix); found {
			id, _, _ := strings.Cut(rest, "/")
			return validID(id)
		}
	}
	return "", false
}

func validID(id string) (string, bool) {
	if id == "" || !videoIDPattern.MatchString(id) {
		return "", false
	}
	return id, true
}
