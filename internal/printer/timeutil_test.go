package printer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slok/w3task/internal/printer"
)

func TestTimeLeft(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		deadline time.Time
		expected string
	}{
		"no deadline": {
			deadline: time.Time{},
			expected: "-",
		},
		"30 seconds left": {
			deadline: now.Add(30 * time.Second),
			expected: "in 30 seconds",
		},
		"1 minute left": {
			deadline: now.Add(time.Minute),
			expected: "in 1 minute",
		},
		"5 hours left": {
			deadline: now.Add(5 * time.Hour),
			expected: "in 5 hours",
		},
		"7 days left": {
			deadline: now.Add(7 * 24 * time.Hour),
			expected: "in 7 days",
		},
		"1 hour ago": {
			deadline: now.Add(-time.Hour),
			expected: "1 hour ago",
		},
		"2 days ago": {
			deadline: now.Add(-48 * time.Hour),
			expected: "2 days ago",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			result := printer.TimeLeft(test.deadline, now)
			assert.Equal(test.expected, result)
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	assert := assert.New(t)

	ts := time.Date(2026, 1, 30, 10, 30, 45, 0, time.FixedZone("CET", 3600))
	assert.Equal("2026-01-30 09:30:45 UTC", printer.FormatTimestamp(ts))
	assert.Equal("-", printer.FormatTimestamp(time.Time{}))
}
