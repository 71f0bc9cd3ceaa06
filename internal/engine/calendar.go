package engine

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/birthday-reminder/internal/config"
)

// CalendarBuilder turns birthday records into an iCalendar feed.
type CalendarBuilder struct {
	Clock  Clock
	Logger *slog.Logger

	// FormatSummary allows callers to inject localized event titles.
	FormatSummary func(name string) string
}

// Build renders one all-day event per record for the previous, current and
// next year, with an optional DISPLAY alarm (ISO8601 duration, e.g. "-P1D").
func (b *CalendarBuilder) Build(records []Record, reminderTrigger string) ([]byte, error) {
	log := loggerOr(b.Logger).With(config.LogKeyComponent, config.CompCalendar)

	cal := ical.NewCalendar()

	// Set standard iCalendar headers
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986: Suggest a refresh interval
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Local time decides the birthday; UTC is only used for DTSTAMP.
	now := b.Clock.Now()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	skipped := 0
	for _, rec := range records {
		if !ValidMonthDay(rec.Month, rec.Day) {
			skipped++
			log.Warn(config.MsgSkippedDate,
				config.LogKeyName, rec.Name,
				config.LogKeyDate, rec.MonthDay())
			continue
		}

		for _, e := range b.createEvents(rec, reminderTrigger, now) {
			e.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	// Clients flag a VCALENDAR without components as invalid, serve the stub instead.
	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	log.Info(config.MsgCalendarBuilt,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyCount, len(records)-skipped),
			slog.Int(config.LogKeySkipped, skipped),
		),
	)
	return buf.Bytes(), nil
}

// createEvents generates calendar events for CurrentYear-1, CurrentYear and CurrentYear+1.
func (b *CalendarBuilder) createEvents(rec Record, reminderTrigger string, now time.Time) []*ical.Event {
	uidBase := eventUID(rec)
	summary := fmt.Sprintf(config.FallbackSummary, rec.Name)
	if b.FormatSummary != nil {
		summary = b.FormatSummary(rec.Name)
	}

	loc := now.Location()
	years := []int{now.Year() - 1, now.Year(), now.Year() + 1}
	events := make([]*ical.Event, 0, len(years))

	for _, y := range years {
		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, fmt.Sprintf("%s-%d", uidBase, y), config.ICalDomain))
		event.Props.SetText(config.PropSummary, summary)

		// Feb 29 normalizes to March 1st in non-leap years.
		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(time.Date(y, rec.Month, rec.Day, 0, 0, 0, 0, loc))
		event.Props.Set(dtStartProp)

		if reminderTrigger != "" {
			addAlarm(event, reminderTrigger, summary)
		}
		events = append(events, event)
	}
	return events
}

// eventUID derives a stable identifier so clients update events across refreshes.
func eventUID(rec Record) string {
	input := fmt.Sprintf(config.FormatHashInput, rec.Name, int(rec.Month), rec.Day, config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
