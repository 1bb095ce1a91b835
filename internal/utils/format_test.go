package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		name     string
		size     int64
		expected string
	}{
		{"zero", 0, "0 B"},
		{"negative", -100, "0 B"},
		{"small", 500, "500 B"},
		{"one KB", 1024, "1.0 KB"},
		{"1.5 KB", 1536, "1.5 KB"},
		{"one MB", 1024 * 1024, "1.0 MB"},
		{"stays in MB", 3 * 1024 * 1024 * 1024, "3072.0 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatFileSize(tt.size)
			if result != tt.expected {
				t.Errorf("FormatFileSize(%d) = %q, want %q", tt.size, result, tt.expected)
			}
		})
	}
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 1.5, RoundTo(1.4999, 1))
	assert.Equal(t, 12.3, RoundTo(12.34, 1))
	assert.Equal(t, 1024.0, RoundTo(1023.6, 0))
	assert.Equal(t, 1.0, BytesToMB(1024*1024))
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 9, 7, 3, 0, time.Local)
	assert.Equal(t, "05-03-24 09:07:03", FormatTimestamp(ts))
}

func TestRelativeDay(t *testing.T) {
	now := time.Date(2024, time.June, 10, 0, 30, 0, 0, time.Local)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"earlier today", time.Date(2024, time.June, 10, 0, 5, 0, 0, time.Local), "Today"},
		// less than an hour ago but on the previous calendar day
		{"just before midnight", time.Date(2024, time.June, 9, 23, 50, 0, 0, time.Local), "Yesterday"},
		{"three days", time.Date(2024, time.June, 7, 12, 0, 0, 0, time.Local), "3 days ago"},
		{"a week", time.Date(2024, time.June, 3, 23, 0, 0, 0, time.Local), "7 days ago"},
		{"older", time.Date(2024, time.June, 2, 8, 0, 0, 0, time.Local), "6/2/2024"},
		{"future", time.Date(2024, time.June, 12, 8, 0, 0, 0, time.Local), "6/12/2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeDay(tt.at, now))
		})
	}
}
