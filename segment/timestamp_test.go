package segment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want time.Time
		ok   bool
	}{
		{
			name: "RFC3339 with Z",
			raw:  "2024-03-15T10:00:00Z",
			want: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "RFC3339 with fractional seconds",
			raw:  "2024-03-15T10:00:00.123456Z",
			want: time.Date(2024, 3, 15, 10, 0, 0, 123456000, time.UTC),
			ok:   true,
		},
		{
			name: "zone-less",
			raw:  "2024-03-15T10:00:00",
			want: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "space separated",
			raw:  "2024-03-15 10:00:00",
			want: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "date only",
			raw:  "2024-03-15",
			want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "garbage",
			raw:  "yesterday",
			want: time.Time{},
			ok:   false,
		},
		{
			name: "empty",
			raw:  "",
			want: time.Time{},
			ok:   false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tc.raw)
			require.Equal(t, tc.ok, ok)
			assert.True(t, tc.want.Equal(got), "want %v, got %v", tc.want, got)
		})
	}
}
