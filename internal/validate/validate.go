package validate

import (
	"fmt"
	"unicode/utf8"
)

// Text field length limits, shared by the service and the CLI.
const (
	MaxNoteLength     = 1000
	MaxVideoKeyLength = 2048
	MaxFilterLength   = 200
)

// MaxTimeSeconds caps a bookmark's position, roughly 31 years of playback.
const MaxTimeSeconds = 1_000_000_000

func checkLen(value string, max int, field string) string {
	if utf8.RuneCountInString(value) > max {
		return fmt.Sprintf("%s must be %d characters or fewer", field, max)
	}
	return ""
}

func Note(s string) string     { return checkLen(s, MaxNoteLength, "note") }
func VideoKey(s string) string { return checkLen(s, MaxVideoKeyLength, "video key") }
func Filter(s string) string   { return checkLen(s, MaxFilterLength, "filter") }

// Time reports a position beyond MaxTimeSeconds.
func Time(seconds float64) string {
	if seconds > MaxTimeSeconds {
		return fmt.Sprintf("time must be %d seconds or fewer", MaxTimeSeconds)
	}
	return ""
}

// FieldLimits returns field names mapped to max lengths for the /api/limits endpoint.
func FieldLimits() map[string]int {
	return map[string]int{
		"note":     MaxNoteLength,
		"videoKey": MaxVideoKeyLength,
		"filter":   MaxFilterLength,
		"time":     MaxTimeSeconds,
	}
}
