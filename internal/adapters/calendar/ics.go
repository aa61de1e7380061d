package calendar

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"eventhub/internal/domain"
)

const productID = "-//eventhub//events//EN"

// Exporter renders events as iCalendar documents.
type Exporter struct {
	baseURL string
	now     func() time.Time
}

// NewExporter returns an exporter linking events under baseURL (e.g. "https://events.example.com").
func NewExporter(baseURL string) *Exporter {
	return &Exporter{baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
}

// Export writes one VEVENT for the event and one per schedule slot.
func (x *Exporter) Export(e *domain.EventListing, schedules []*domain.EventSchedule) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("calendar: nil event")
	}
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(e.Title)

	stamp := x.now().UTC()
	url := ""
	if x.baseURL != "" {
		url = x.baseURL + "/events/" + e.Slug
	}

	x.addEvent(cal, fmt.Sprintf("event-%d@eventhub", e.ID), e, e.Title, e.StartAt, e.EndAt, stamp, url)
	for _, s := range schedules {
		summary := e.Title
		if s.Note != "" {
			summary += ": " + s.Note
		}
		x.addEvent(cal, fmt.Sprintf("event-%d-schedule-%d@eventhub", e.ID, s.ID), e, summary, s.StartAt, s.EndAt, stamp, url)
	}
	return []byte(cal.Serialize()), nil
}

func (x *Exporter) addEvent(cal *ical.Calendar, uid string, e *domain.EventListing, summary string, start, end, stamp time.Time, url string) {
	ev := cal.AddEvent(uid)
	ev.SetDtStampTime(stamp)
	ev.SetModifiedAt(e.UpdatedAt.UTC())
	ev.SetStartAt(start.UTC())
	ev.SetEndAt(end.UTC())
	ev.SetSummary(summary)
	if e.Description != "" {
		ev.SetDescription(e.Description)
	}
	if e.VenueName != "" {
		ev.SetLocation(e.VenueName)
	}
	if e.OrganizerName != "" {
		ev.SetOrganizer(e.OrganizerName)
	}
	if url != "" {
		ev.SetURL(url)
	}
	switch e.Status {
	case domain.EventStatusPublished:
		ev.SetStatus(ical.ObjectStatusConfirmed)
	case domain.EventStatusCancelled:
		ev.SetStatus(ical.ObjectStatusCancelled)
	default:
		ev.SetStatus(ical.ObjectStatusTentative)
	}
}
