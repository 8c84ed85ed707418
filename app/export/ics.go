package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/ehime-live/live-schedule/app/database"
	"github.com/ehime-live/live-schedule/app/event"
)

const productID = "-//ehime-live//live-schedule//JA"

type CalendarGenerator struct {
	now func() time.Time
}

func NewCalendarGenerator() *CalendarGenerator {
	return &CalendarGenerator{now: time.Now}
}

// Run writes events as an iCalendar stream. Each event with a valid date
// becomes an all-day VEVENT; undated events are skipped.
func (g *CalendarGenerator) Run(w io.Writer, events []database.Event) error {
	now := g.now()

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Props.SetText("X-WR-CALNAME", channelTitle)
	cal.Children = append(cal.Children, timezoneComponent(now))

	for _, e := range events {
		vevent, ok := g.buildEvent(e, now)
		if !ok {
			continue
		}
		cal.Children = append(cal.Children, vevent.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

func (g *CalendarGenerator) buildEvent(e database.Event, now time.Time) (*ical.Event, bool) {
	day, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(e.Date), time.Local)
	if err != nil {
		return nil, false
	}

	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, fmt.Sprintf("event-%d@live-schedule", e.ID))
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	vevent.Props.SetDate(ical.PropDateTimeStart, day)
	vevent.Props.SetDate(ical.PropDateTimeEnd, day.AddDate(0, 0, 1))
	vevent.Props.SetText(ical.PropSummary, event.DisplayTitle(e.Title))

	if e.Venue != "" {
		vevent.Props.SetText(ical.PropLocation, e.Venue)
	}
	if description := calendarDescription(e); description != "" {
		vevent.Props.SetText(ical.PropDescription, description)
	}
	if e.Link != "" {
		prop := ical.NewProp(ical.PropURL)
		prop.Value = e.Link
		vevent.Props.Set(prop)
	}

	return vevent, true
}

func calendarDescription(e database.Event) string {
	var lines []string
	for _, s := range []string{e.Content, e.Time, e.Fee, e.Ticket} {
		if s = strings.TrimSpace(s); s != "" {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "\n")
}

// timezoneComponent describes the service timezone as a fixed offset.
func timezoneComponent(now time.Time) *ical.Component {
	name, offset := now.In(time.Local).Zone()

	standard := ical.NewComponent(ical.CompTimezoneStandard)
	standard.Props.SetText(ical.PropTimezoneName, name)
	setOffset(standard, ical.PropTimezoneOffsetFrom, offset)
	setOffset(standard, ical.PropTimezoneOffsetTo, offset)
	dtstart := ical.NewProp(ical.PropDateTimeStart)
	dtstart.Value = "19700101T000000"
	standard.Props.Set(dtstart)

	tz := ical.NewComponent(ical.CompTimezone)
	tz.Props.SetText(ical.PropTimezoneID, time.Local.String())
	tz.Children = append(tz.Children, standard)
	return tz
}

func setOffset(comp *ical.Component, name string, offset int) {
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	prop := ical.NewProp(name)
	prop.Value = fmt.Sprintf("%c%02d%02d", sign, offset/3600, (offset%3600)/60)
	comp.Props.Set(prop)
}
