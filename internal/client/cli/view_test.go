package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/DikaaDK/Chronos-sub000/internal/calendar"
	"github.com/DikaaDK/Chronos-sub000/internal/client/prefs"
	"github.com/DikaaDK/Chronos-sub000/internal/journal"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[----------]   0%", progressBar(0))
	assert.Equal(t, "[####------]  40%", progressBar(40))
	assert.Equal(t, "[##########] 100%", progressBar(100))
}

func TestRenderList_Empty(t *testing.T) {
	th := newTheme(prefs.ThemeDark)
	assert.Contains(t, th.renderList(nil, time.Now(), "en"), "No journals yet")
}

func TestRenderEntry_UntitledAndUndated(t *testing.T) {
	th := newTheme(prefs.ThemeLight)
	out := th.renderEntry(journal.Entry{ID: "5", Content: "  body  "}, time.Now(), "en")
	assert.Contains(t, out, "Untitled")
	assert.Contains(t, out, "#5")
	assert.Contains(t, out, "body")
}

func TestRenderMonth_EnglishHeaderAndToday(t *testing.T) {
	th := newTheme(prefs.ThemeLight)
	idx := calendar.BuildIndex(sampleEntries(), "Untitled")

	out := th.renderMonth(idx, 2025, time.January, day(2025, 1, 20), "en-US")
	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[0], "January 2025")
	assert.Contains(t, lines[1], "Mon")
	assert.Contains(t, out, "20*")
	assert.Contains(t, out, "31")
}
