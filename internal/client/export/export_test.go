package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DikaaDK/Chronos-sub000/internal/journal"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func sample() []journal.Entry {
	p := 40.0
	return []journal.Entry{
		{ID: "2", Title: "Trip", Content: "pack", StartDate: day(2025, 1, 10), EndDate: day(2025, 1, 12), Progress: &p},
		{ID: "1", Title: "Dateless"},
	}
}

var now = day(2025, 1, 20).Add(9 * time.Hour)

func TestRecords(t *testing.T) {
	want := []Record{
		{
			ID: "2", Title: "Trip", Content: "pack",
			StartDate: "2025-01-10", EndDate: "2025-01-12",
			Period:   "10 Jan 2025 - 12 Jan 2025",
			Progress: 40, Status: "in_progress", Overdue: true,
		},
		{ID: "1", Title: "Dateless", Period: "-", Status: "not_started"},
	}
	if diff := cmp.Diff(want, Records(sample(), now, "en")); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestRecords_LocalizedPeriod(t *testing.T) {
	p := 100.0
	recs := Records([]journal.Entry{{ID: "3", Date: day(2025, 8, 17), Progress: &p}}, now, "id-ID")
	require.Len(t, recs, 1)
	assert.Equal(t, "17 Agu 2025", recs[0].Period)
	assert.Equal(t, "completed", recs[0].Status)
	assert.False(t, recs[0].Overdue)
}

func TestToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ToJSON(&buf, sample(), now, "en-US"))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "en", doc.Locale)
	assert.Equal(t, 2, doc.Count)
	assert.True(t, now.Equal(doc.ExportedAt))
	require.Len(t, doc.Journals, 2)
	assert.Equal(t, journal.ID("2"), doc.Journals[0].ID)
	assert.Contains(t, buf.String(), `"id": 2`)
}

func TestToCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ToCSV(&buf, sample(), now, "en"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,title,start_date,end_date,period,progress,status,overdue", lines[0])
	assert.Equal(t, "2,Trip,2025-01-10,2025-01-12,10 Jan 2025 - 12 Jan 2025,40,in_progress,true", lines[1])
	assert.Equal(t, "1,Dateless,,,-,0,not_started,false", lines[2])
}

func TestToCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ToCSV(&buf, nil, now, "en"))
	assert.Equal(t, strings.Join(csvHeader, ",")+"\n", buf.String())
}
