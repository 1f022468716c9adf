package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCleanString(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		lower bool
		want  string
	}{
		{name: "trim", in: "  Goma ", want: "Goma"},
		{name: "collapse", in: " Serena \t Hotel\n", want: "Serena Hotel"},
		{name: "lower", in: " Jane@Example.COM ", lower: true, want: "jane@example.com"},
		{name: "blank", in: " \t ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanString(tt.in, tt.lower))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Kinsh…", Truncate("Kinshasa", 5))
	assert.Equal(t, "Goma", Truncate("Goma", 5))
	assert.Equal(t, "Goma", Truncate("Goma", 0))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "-", FormatDate(time.Time{}))
	assert.Equal(t, "-", FormatDateTime(time.Time{}))
	at := time.Date(2026, 6, 1, 14, 30, 0, 0, time.FixedZone("CAT", 2*60*60))
	assert.Equal(t, "2026-06-01", FormatDate(at))
	assert.Equal(t, "2026-06-01 12:30", FormatDateTime(at))
}
