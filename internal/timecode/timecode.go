package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxSeconds is the largest whole number a float64 holds exactly. Larger
// inputs are clamped to it so the int64 conversion cannot overflow.
const maxSeconds = 1 << 53

// Format renders seconds as M:SS, or H:MM:SS from one hour up. Fractional
// seconds are truncated.
func Format(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	if seconds > maxSeconds {
		seconds = maxSeconds
	}
	total := int64(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// Parse is the inverse of Format. It also accepts a bare number of seconds.
func Parse(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty time code")
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid time code %q: too many parts", s)
	}

	var total float64
	for i, part := range parts {
		n, err := strconv.ParseFloat(part, 64)
		if err != nil || n < 0 || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, fmt.Errorf("invalid time code %q", s)
		}
		// only the last part may carry a fraction
		if i < len(parts)-1 && n != math.Trunc(n) {
			return 0, fmt.Errorf("invalid time code %q", s)
		}
		total = total*60 + n
	}
	return total, nil
}
