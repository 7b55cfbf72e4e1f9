package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

// Event is a single all-day calendar event.
type Event struct {
	UID         string
	Date        time.Time
	Summary     string
	Description string
}

// ICSExporter renders all-day events into an iCalendar document.
type ICSExporter struct {
	ProductID string
	now       func() time.Time
}

// NewICSExporter constructs an ICS exporter.
func NewICSExporter() *ICSExporter {
	return &ICSExporter{ProductID: "-//lesson-planner-api//timetable//EN", now: time.Now}
}

// Render builds a published calendar named name holding events.
func (e *ICSExporter) Render(events []Event, name string) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(e.ProductID)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	stamp := e.now().UTC()
	for _, ev := range events {
		if ev.UID == "" {
			return nil, fmt.Errorf("ics event on %s missing uid", ev.Date.Format("2006-01-02"))
		}
		event := cal.AddEvent(ev.UID)
		event.SetDtStampTime(stamp)
		event.SetAllDayStartAt(ev.Date)
		event.SetAllDayEndAt(ev.Date.AddDate(0, 0, 1))
		event.SetSummary(ev.Summary)
		if ev.Description != "" {
			event.SetDescription(ev.Description)
		}
	}

	return []byte(cal.Serialize()), nil
}
