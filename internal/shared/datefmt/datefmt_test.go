package datefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDisplay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"standard date", "20241120", "2024-11-20"},
		{"new year", "20250101", "2025-01-01"},
		{"short value is returned as-is", "202411", "202411"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ToDisplay(tt.in))
		})
	}
}

func TestFromDisplay(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "20241120", FromDisplay("2024-11-20"))
	assert.Equal(t, "20241120", FromDisplay(" 2024-11-20 "))
	assert.Equal(t, "20241120", FromDisplay("20241120"))
}

func TestFormatParse_RoundTrip(t *testing.T) {
	t.Parallel()

	d := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	raw := Format(d)
	assert.Equal(t, "20240229", raw)

	back, err := Parse(raw)
	require.NoError(t, err)
	assert.True(t, back.Equal(d))
}

func TestToday_UsesExchangeTimeZone(t *testing.T) {
	t.Parallel()

	// 2024-11-20 16:00 UTC は ソウルでは 2024-11-21 01:00
	now := time.Date(2024, 11, 20, 16, 0, 0, 0, time.UTC)
	assert.Equal(t, "20241121", Format(Today(now)))

	noon := time.Date(2024, 11, 20, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, "20241120", Format(Today(noon)))
}
