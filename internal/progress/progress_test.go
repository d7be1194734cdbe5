package progress

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func ptr(v float64) *float64 { return &v }

func TestCompute_Explicit(t *testing.T) {
	now := day(2025, 1, 6)
	tests := []struct {
		name    string
		value   float64
		percent int
		label   Label
	}{
		{"zero", 0, 0, NotStarted},
		{"negative clamps", -20, 0, NotStarted},
		{"rounds", 40.5, 41, InProgress},
		{"rounds down", 40.4, 40, InProgress},
		{"full", 100, 100, Completed},
		{"over clamps", 150, 100, Completed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(Input{Progress: ptr(tt.value), Start: day(2025, 1, 1), End: day(2025, 1, 11)}, now)
			assert.Equal(t, tt.percent, got.Percent)
			assert.Equal(t, tt.label, got.Label)
		})
	}
}

func TestCompute_ExplicitBeatsFutureWindow(t *testing.T) {
	got := Compute(Input{Progress: ptr(80), Start: day(2030, 1, 1), End: day(2030, 2, 1)}, day(2025, 1, 1))
	assert.Equal(t, 80, got.Percent)
	assert.Equal(t, InProgress, got.Label)
}

func TestCompute_NonFiniteExplicitFallsBackToWindow(t *testing.T) {
	got := Compute(Input{Progress: ptr(math.NaN()), Start: day(2025, 1, 1), End: day(2025, 1, 11)}, day(2025, 1, 6))
	assert.Equal(t, 50, got.Percent)
}

func TestCompute_WindowHalfway(t *testing.T) {
	got := Compute(Input{Start: day(2025, 1, 1), End: day(2025, 1, 11)}, day(2025, 1, 6))
	assert.Equal(t, 50, got.Percent)
	assert.Equal(t, InProgress, got.Label)
	assert.False(t, got.Overdue)
}

func TestCompute_WindowBounds(t *testing.T) {
	in := Input{Start: day(2025, 1, 1), End: day(2025, 1, 11)}
	assert.Equal(t, 0, Compute(in, day(2024, 12, 1)).Percent)
	assert.Equal(t, NotStarted, Compute(in, day(2024, 12, 1)).Label)
	assert.Equal(t, 100, Compute(in, day(2025, 3, 1)).Percent)
	assert.Equal(t, Completed, Compute(in, day(2025, 3, 1)).Label)
}

func TestCompute_SingleDayWindow(t *testing.T) {
	in := Input{Start: day(2025, 1, 10), End: day(2025, 1, 10)}
	assert.Equal(t, 0, Compute(in, day(2025, 1, 9)).Percent)
	assert.Equal(t, 100, Compute(in, day(2025, 1, 10)).Percent)
	assert.Equal(t, 100, Compute(in, day(2025, 1, 10).Add(15*time.Hour)).Percent)
}

func TestCompute_InvertedWindowTreatedAsSingleDay(t *testing.T) {
	in := Input{Start: day(2025, 1, 10), End: day(2025, 1, 1)}
	assert.Equal(t, 0, Compute(in, day(2025, 1, 5)).Percent)
	assert.Equal(t, 100, Compute(in, day(2025, 1, 10)).Percent)
}

func TestCompute_MissingDates(t *testing.T) {
	assert.Equal(t, 0, Compute(Input{}, day(2025, 1, 1)).Percent)
	assert.Equal(t, 100, Compute(Input{End: day(2025, 1, 1)}, day(2025, 1, 2)).Percent)
	assert.Equal(t, 0, Compute(Input{Start: day(2025, 1, 3)}, day(2025, 1, 2)).Percent)
}

func TestCompute_MonotonicInTime(t *testing.T) {
	in := Input{Start: day(2025, 3, 1), End: day(2025, 4, 15)}
	prev := -1
	for now := day(2025, 2, 25); !now.After(day(2025, 4, 20)); now = now.Add(7 * time.Hour) {
		p := Compute(in, now).Percent
		assert.GreaterOrEqual(t, p, prev, "percent decreased at %v", now)
		prev = p
	}
	assert.Equal(t, 100, prev)
}

func TestIsOverdue(t *testing.T) {
	in := Input{Progress: ptr(40), End: day(2025, 1, 1)}
	assert.True(t, IsOverdue(in, day(2025, 1, 5)))
	assert.False(t, IsOverdue(in, day(2024, 12, 30)))
	assert.False(t, IsOverdue(in, day(2025, 1, 1).Add(20*time.Hour)), "end day itself is not elapsed")

	done := Input{Progress: ptr(100), End: day(2025, 1, 1)}
	assert.False(t, IsOverdue(done, day(2025, 1, 5)))

	over := Input{Progress: ptr(130), End: day(2025, 1, 1)}
	assert.False(t, IsOverdue(over, day(2025, 1, 5)))

	noDates := Input{Progress: ptr(10)}
	assert.False(t, IsOverdue(noDates, day(2025, 1, 5)))
}

func TestIsOverdue_NeverWithoutExplicitProgress(t *testing.T) {
	windows := []Input{
		{Start: day(2020, 1, 1), End: day(2020, 1, 2)},
		{Start: day(2020, 1, 1)},
		{End: day(2019, 1, 1)},
		{},
	}
	for _, in := range windows {
		for _, now := range []time.Time{day(2018, 1, 1), day(2020, 1, 2), day(2030, 1, 1)} {
			assert.False(t, IsOverdue(in, now))
			assert.False(t, Compute(in, now).Overdue)
		}
	}
}

func TestLabelString(t *testing.T) {
	assert.Equal(t, "In progress", InProgress.String())
	assert.Equal(t, "custom", Label("custom").String())
}
