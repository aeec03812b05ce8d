package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:30", want: 570},
		{in: "23:59", want: 1439},
		{in: " 8:05 ", want: 485},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, -1, ClockMinutes(tt.in))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDurationMinutesWrapsMidnight(t *testing.T) {
	assert.Equal(t, 60, DurationMinutes(570, 630))
	// 22:30 to 01:00 next day.
	assert.Equal(t, 150, DurationMinutes(1350, 60))
	assert.Equal(t, 0, DurationMinutes(600, 600))
}

func TestDateHelpers(t *testing.T) {
	day := time.Date(2026, 2, 10, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "2026-02-10", ISODate(day))
	assert.Equal(t, day.Truncate(24*time.Hour), MustParseDate("2026-02-10"))
	assert.True(t, MustParseDate("not-a-date").IsZero())

	assert.Equal(t, "10.02.2026", FormatDisplayDate("2026-02-10"))
	assert.Equal(t, "garbage", FormatDisplayDate("garbage"))
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"2мл", "10мл"}, Unique([]string{"2мл", "10мл", "2мл"}))
	assert.Empty(t, Unique([]string{}))
}

func TestFilter(t *testing.T) {
	even := Filter([]int{1, 2, 3, 4}, func(n int) bool { return n%2 == 0 })
	assert.Equal(t, []int{2, 4}, even)
}
