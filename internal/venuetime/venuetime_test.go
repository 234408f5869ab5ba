package venuetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("21:30")
	require.NoError(t, err)
	assert.Equal(t, 21, h)
	assert.Equal(t, 30, m)

	for _, bad := range []string{"", "21", "24:00", "12:60", "ab:cd", "12:3x"} {
		_, _, err := ParseClock(bad)
		assert.Error(t, err, "expected error for %q", bad)
	}
}

func TestResolveWindowSameDay(t *testing.T) {
	loc := Location(-5)
	date := time.Date(2026, 6, 12, 12, 0, 0, 0, loc)

	w, err := ResolveWindow(date, "18:00", "23:00", loc)
	require.NoError(t, err)
	assert.Equal(t, 18, w.Open.Hour())
	assert.Equal(t, 23, w.Close.Hour())
	assert.Equal(t, w.Open.Day(), w.Close.Day())
}

func TestResolveWindowCrossMidnight(t *testing.T) {
	loc := Location(-5)
	date := time.Date(2026, 6, 12, 12, 0, 0, 0, loc)

	w, err := ResolveWindow(date, "21:00", "03:00", loc)
	require.NoError(t, err)
	assert.Equal(t, 12, w.Open.Day())
	assert.Equal(t, 13, w.Close.Day())
	assert.True(t, w.Close.After(w.Open))
}

func TestWindowContains(t *testing.T) {
	loc := Location(-5)
	date := time.Date(2026, 6, 12, 12, 0, 0, 0, loc)
	w, err := ResolveWindow(date, "21:00", "03:00", loc)
	require.NoError(t, err)

	assert.True(t, w.Contains(w.Open), "open boundary is inclusive")
	assert.False(t, w.Contains(w.Close), "close boundary is exclusive")
	assert.True(t, w.Contains(time.Date(2026, 6, 13, 1, 0, 0, 0, loc)))
	assert.False(t, w.Contains(time.Date(2026, 6, 12, 20, 59, 0, 0, loc)))
}

func TestNoonAnchorKeepsCivilDate(t *testing.T) {
	loc := Location(-5)
	// midnight UTC serializations land on the previous civil day when
	// viewed through a negative offset; the anchor must not shift
	stored := time.Date(2026, 6, 12, 0, 0, 0, 0, time.UTC)

	anchored := NoonAnchor(stored, loc)
	assert.Equal(t, 12, anchored.Day())
	assert.Equal(t, 12, anchored.Hour())
	assert.Equal(t, loc, anchored.Location())
}

func TestHoursUntilFloors(t *testing.T) {
	base := time.Date(2026, 6, 12, 21, 0, 0, 0, time.UTC)

	assert.Equal(t, 10, HoursUntil(base.Add(-10*time.Hour), base))
	assert.Equal(t, 2, HoursUntil(base.Add(-150*time.Minute), base))
	// 2.5 hours past the target must floor to -3, not truncate to -2
	assert.Equal(t, -3, HoursUntil(base.Add(150*time.Minute), base))
	assert.Equal(t, 0, HoursUntil(base, base))
}

func TestMinutesUntilFloors(t *testing.T) {
	base := time.Date(2026, 6, 12, 21, 0, 0, 0, time.UTC)

	assert.Equal(t, 200, MinutesUntil(base.Add(-200*time.Minute), base))
	assert.Equal(t, -1, MinutesUntil(base.Add(30*time.Second), base))
}

func TestSameCivilDay(t *testing.T) {
	loc := Location(-5)
	a := time.Date(2026, 6, 13, 2, 0, 0, 0, time.UTC)  // June 12, 21:00 local
	b := time.Date(2026, 6, 12, 18, 0, 0, 0, time.UTC) // June 12, 13:00 local

	assert.True(t, SameCivilDay(a, b, loc))
	assert.False(t, SameCivilDay(a, b.AddDate(0, 0, 1), loc))
}

func TestWeekday(t *testing.T) {
	loc := Location(-5)
	// June 13 02:00 UTC is still Friday June 12 in the venue zone
	d := time.Date(2026, 6, 13, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, "Friday", Weekday(d, loc))
}
