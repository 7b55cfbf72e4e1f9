package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
	"github.com/noah-isme/lesson-planner-api/internal/planner"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
	"github.com/noah-isme/lesson-planner-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV  = "csv"
	ExportFormatPDF  = "pdf"
	ExportFormatXLSX = "xlsx"
	ExportFormatICS  = "ics"
)

var exportContentTypes = map[string]string{
	ExportFormatCSV:  "text/csv; charset=utf-8",
	ExportFormatPDF:  "application/pdf",
	ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	ExportFormatICS:  "text/calendar; charset=utf-8",
}

type currentTimetableReader interface {
	Current(ctx context.Context) (*models.Timetable, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset, sheet string) ([]byte, error)
}

type icsRenderer interface {
	Render(events []export.Event, name string) ([]byte, error)
}

// ExportFile is a rendered timetable ready to download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the current timetable into downloadable files.
type ExportService struct {
	timetables currentTimetableReader
	csv        csvRenderer
	pdf        pdfRenderer
	xlsx       xlsxRenderer
	ics        icsRenderer
	logger     *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers use the defaults.
func NewExportService(timetables currentTimetableReader, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer, xlsx xlsxRenderer, ics icsRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdfExporter := export.NewPDFExporter()
		pdfExporter.Widths = map[string]float64{"Date": 28, "Weekday": 24, "Type": 34, "Status": 28}
		pdf = pdfExporter
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter()
	}
	if ics == nil {
		ics = export.NewICSExporter()
	}
	return &ExportService{timetables: timetables, csv: csv, pdf: pdf, xlsx: xlsx, ics: ics, logger: logger}
}

// Export renders the current timetable in the requested format (csv by default).
func (s *ExportService) Export(ctx context.Context, query dto.ExportQuery) (*ExportFile, error) {
	format := strings.ToLower(strings.TrimSpace(query.Format))
	if format == "" {
		format = ExportFormatCSV
	}
	contentType, ok := exportContentTypes[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", query.Format))
	}

	timetable, err := s.timetables.Current(ctx)
	if err != nil {
		return nil, err
	}

	var body []byte
	switch format {
	case ExportFormatCSV:
		body, err = s.csv.Render(timetableDataset(timetable))
	case ExportFormatPDF:
		body, err = s.pdf.Render(timetableDataset(timetable), fmt.Sprintf("Lesson timetable v%d", timetable.Version))
	case ExportFormatXLSX:
		body, err = s.xlsx.Render(timetableDataset(timetable), "Timetable")
	case ExportFormatICS:
		body, err = s.ics.Render(classEvents(timetable), "Lesson timetable")
	}
	if err != nil {
		s.logger.Error("failed to render timetable export", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("timetable-v%d.%s", timetable.Version, format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

var timetableHeaders = []string{"Date", "Weekday", "Type", "Details", "Status", "Note"}

func timetableDataset(timetable *models.Timetable) export.Dataset {
	rows := make([]map[string]string, 0, len(timetable.Entries))
	for _, entry := range timetable.Entries {
		weekday := ""
		if d, err := planner.ParseDate(entry.Date); err == nil {
			weekday = d.Weekday().String()
		}
		status := string(entry.Status)
		if status == "" && entry.Type == models.EntryTypeClass {
			status = string(models.EntryStatusPending)
		}
		rows = append(rows, map[string]string{
			"Date":    entry.Date,
			"Weekday": weekday,
			"Type":    string(entry.Type),
			"Details": entry.Details,
			"Status":  status,
			"Note":    entryNote(entry),
		})
	}
	return export.Dataset{Headers: timetableHeaders, Rows: rows}
}

func entryNote(entry models.TimetableEntry) string {
	var notes []string
	if entry.RescheduledTo != "" {
		notes = append(notes, "moved to "+entry.RescheduledTo)
	}
	if entry.RescheduledFrom != "" {
		notes = append(notes, "rescheduled from "+entry.RescheduledFrom)
	}
	if entry.ContinuedFrom != "" {
		notes = append(notes, "continues "+entry.ContinuedFrom)
	}
	return strings.Join(notes, "; ")
}

// classEvents renders live classes as all-day events.
func classEvents(timetable *models.Timetable) []export.Event {
	events := make([]export.Event, 0, len(timetable.Entries))
	for _, entry := range timetable.Entries {
		if entry.Type != models.EntryTypeClass || entry.MovedAway() {
			continue
		}
		date, err := planner.ParseDate(entry.Date)
		if err != nil {
			continue
		}
		description := entryNote(entry)
		if entry.Status != "" {
			description = strings.TrimSpace(string(entry.Status) + ". " + description)
		}
		events = append(events, export.Event{
			UID:         fmt.Sprintf("%s-%s@lesson-planner", timetable.ID, entry.Date),
			Date:        date,
			Summary:     entry.Details,
			Description: description,
		})
	}
	return events
}
