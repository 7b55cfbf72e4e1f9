package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Date", "Type", "Details"},
		Rows: []map[string]string{
			{"Date": "2024-01-01", "Type": "Class", "Details": "Algebra: Intro, basics"},
			{"Date": "2024-01-02", "Type": "Holiday", "Details": "No classes"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Equal(t, "Date,Type,Details", lines[0])
	assert.Equal(t, `2024-01-01,Class,"Algebra: Intro, basics"`, lines[1])
	assert.Len(t, lines, 3)

	_, err = NewCSVExporter().Render(Dataset{})
	assert.ErrorIs(t, err, ErrNoHeaders)
}

func TestCSVExporterNeutralizesFormulas(t *testing.T) {
	data := Dataset{
		Headers: []string{"Details"},
		Rows:    []map[string]string{{"Details": "=SUM(A1)"}, {"Details": "Algebra"}},
	}
	exporter := NewCSVExporter()
	exporter.Comma = ';'

	var buf bytes.Buffer
	require.NoError(t, exporter.Write(&buf, data))
	assert.Equal(t, "Details\n'=SUM(A1)\nAlgebra\n", buf.String())
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()
	exporter.Widths = map[string]float64{"Date": 30, "Type": 35}

	out, err := exporter.Render(sampleDataset(), "Timetable")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	widths := exporter.columnWidths(sampleDataset().Headers)
	assert.Equal(t, []float64{30, 35, pdfContentWidth - 65}, widths)
}

func TestXLSXExporterRender(t *testing.T) {
	out, err := NewXLSXExporter().Render(sampleDataset(), "Timetable")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Timetable"}, f.GetSheetList())
	value, err := f.GetCellValue("Timetable", "C2")
	require.NoError(t, err)
	assert.Equal(t, "Algebra: Intro, basics", value)
}

func TestICSExporterRender(t *testing.T) {
	exporter := NewICSExporter()
	exporter.now = func() time.Time { return time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC) }

	out, err := exporter.Render([]Event{{
		UID:         "2024-01-03@lesson-planner",
		Date:        time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		Summary:     "Algebra: Intro",
		Description: "Pending",
	}}, "Lesson timetable")
	require.NoError(t, err)

	body := string(out)
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "SUMMARY:Algebra: Intro")
	assert.Contains(t, body, "DTSTART;VALUE=DATE:20240103")
	assert.Contains(t, body, "DTEND;VALUE=DATE:20240104")

	_, err = exporter.Render([]Event{{Date: time.Now()}}, "")
	assert.Error(t, err)
}
