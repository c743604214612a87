// Package timestamp owns the per-video lists of bookmarked playback
// positions and their persistence.
package timestamp

import (
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/vidmark/vidmark/internal/storage"
)

// Record is one bookmark. Time is seconds into the video and Created is
// epoch milliseconds.
type Record struct {
	ID      string  `json:"id,omitempty"`
	Time    float64 `json:"time"`
	Note    string  `json:"note"`
	Created int64   `json:"created"`
}

// Identity is the stable handle a record is deleted by. Records written
// before ids existed fall back to their creation instant.
func (r Record) Identity() string {
	if r.ID != "" {
		return r.ID
	}
	return strconv.FormatInt(r.Created, 10)
}

// document is the persisted layout: video key to records sorted by time.
type document map[string][]Record

func decode(data []byte) (document, error) {
	doc := document{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode document: %w", storage.ErrStorage, err)
	}
	if doc == nil {
		doc = document{}
	}
	return doc, nil
}

func (d document) encode() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("%w: encode document: %w", storage.ErrStorage, err)
	}
	return data, nil
}

// sortByTime keeps insertion order between records with equal times.
func sortByTime(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Time < records[j].Time
	})
}

var notePolicy = bluemonday.StrictPolicy()

// maxStripPasses bounds NormalizeNote on inputs where stripping one layer of
// markup exposes another.
const maxStripPasses = 8

// NormalizeNote trims the note and strips markup tags from it. Other text,
// entity references included, is kept as written. The result is a fixed
// point: normalizing it again changes nothing.
func NormalizeNote(note string) string {
	note = strings.TrimSpace(note)
	for range maxStripPasses {
		next := stripTags(note)
		if next == note {
			return note
		}
		note = next
	}
	return note
}

// stripTags removes one layer of tags. Ampersands are escaped first so that
// entities the user typed survive the sanitizer's decode and re-encode.
func stripTags(note string) string {
	if note == "" {
		return ""
	}
	escaped := strings.ReplaceAll(note, "&", "&amp;")
	return strings.TrimSpace(html.UnescapeString(notePolicy.Sanitize(escaped)))
}
