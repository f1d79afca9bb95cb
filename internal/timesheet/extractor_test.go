package timesheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractShift_LastTimeIsStart(t *testing.T) {
	shift, ok := ExtractShift([]string{"א'", "16:30", "08:00", "8.50"}, "א")
	require.True(t, ok)
	assert.Equal(t, "08:00", shift.StartTime)
	assert.Equal(t, "16:30", shift.EndTime)
	assert.Equal(t, 8.5, shift.TotalHours)
	assert.Equal(t, "א", shift.DayMarker)
}

func TestExtractShift_OvernightWrapsMidnight(t *testing.T) {
	shift, ok := ExtractShift([]string{"ד", "06:00", "23:00"}, "ד")
	require.True(t, ok)
	assert.Equal(t, "23:00", shift.StartTime)
	assert.Equal(t, "06:00", shift.EndTime)
	assert.Equal(t, 7.0, shift.TotalHours)
}

func TestExtractShift_ClockDuration(t *testing.T) {
	shift, ok := ExtractShift([]string{"8:30", "16:30", "08:00", "ה"}, "ה")
	require.True(t, ok)
	assert.Equal(t, "08:00", shift.StartTime)
	assert.Equal(t, 8.5, shift.TotalHours)
}

func TestExtractShift_TakesLargerOfDecimalAndClock(t *testing.T) {
	shift, ok := ExtractShift([]string{"7.5", "8:15", "16:15", "08:00", "ה"}, "ה")
	require.True(t, ok)
	assert.Equal(t, 8.25, shift.TotalHours)
}

func TestExtractShift_ClockOutsidePlausibleRangeIgnored(t *testing.T) {
	// 2:00 不像一个班次的时长，回退到上下班时间差
	shift, ok := ExtractShift([]string{"2:00", "12:00", "09:00"}, "ב")
	require.True(t, ok)
	assert.Equal(t, 3.0, shift.TotalHours)
}

func TestExtractShift_SingleTimeIsStart(t *testing.T) {
	shift, ok := ExtractShift([]string{"ו", "07:00", "5,5"}, "ו")
	require.True(t, ok)
	assert.Equal(t, "07:00", shift.StartTime)
	assert.Empty(t, shift.EndTime)
	assert.Equal(t, 5.5, shift.TotalHours)
}

func TestExtractShift_RoundsToTwoPlaces(t *testing.T) {
	shift, ok := ExtractShift([]string{"א", "7.3333"}, "א")
	require.True(t, ok)
	assert.Equal(t, 7.33, shift.TotalHours)
}

func TestExtractShift_NoDuration(t *testing.T) {
	for _, cells := range [][]string{
		{"ש", "07:00"},
		{"ש", "25.5"},
		{"ש", "0.0"},
		{"ש", "8"},
		{"ש", "24:10", "08:00"},
	} {
		_, ok := ExtractShift(cells, "ש")
		assert.False(t, ok, "%q", cells)
	}
}
