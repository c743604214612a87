package timecode

import (
	"math"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{75, "1:15"},
		{75.9, "1:15"},
		{599, "9:59"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{3661, "1:01:01"},
		{36000, "10:00:00"},
		{-4, "0:00"},
		{1 << 53, "2501999792983:36:32"},
		{1e20, "2501999792983:36:32"},
		{1e300, "2501999792983:36:32"},
		{math.Inf(1), "2501999792983:36:32"},
		{math.NaN(), "0:00"},
	}

	for _, tt := range tests {
		if got := Format(tt.seconds); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1:15", 75},
		{"1:01:01", 3661},
		{"0:00", 0},
		{"42", 42},
		{" 2:05 ", 125},
		{"1:02.5", 62.5},
	}

	for _, tt := range tests {
		got, err := Parse(tt.input)
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	for _, input := range []string{"", "abc", "1:xx", "1:2:3:4", "-1:00", "1.5:00"} {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) expected error", input)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, seconds := range []float64{0, 59, 60, 75, 3599, 3661, 86399} {
		got, err := Parse(Format(seconds))
		if err != nil {
			t.Fatalf("Parse(Format(%v)): %v", seconds, err)
		}
		if got != seconds {
			t.Errorf("round trip of %v gave %v", seconds, got)
		}
	}
}
