// Package ical renders event schedules as RFC 5545 calendars.
package ical

import (
	"fmt"
	"strings"
	"time"

	"github.com/teammanager/server-go/internal/model"
)

// Events without an explicit end run this long.
const defaultDuration = 2 * time.Hour

const (
	prodID     = "-//Teammanager//Terminplan//DE"
	dateFormat = "20060102T150405"
)

// Render writes the schedule entries as a VCALENDAR. Entries without a date
// are skipped; they cannot be placed on a calendar.
func Render(calName string, entries []model.ScheduleEntry) string {
	var b strings.Builder

	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, "PRODID:"+prodID)
	writeLine(&b, "CALSCALE:GREGORIAN")
	writeLine(&b, "X-WR-CALNAME:"+escape(calName))

	now := time.Now().UTC()
	for _, entry := range entries {
		if entry.Date == nil {
			continue
		}
		writeEvent(&b, entry, now)
	}

	writeLine(&b, "END:VCALENDAR")
	return b.String()
}

func writeEvent(b *strings.Builder, entry model.ScheduleEntry, now time.Time) {
	start := *entry.Date
	if entry.StartTime != nil {
		if t, err := time.Parse("15:04:05", *entry.StartTime); err == nil {
			start = time.Date(start.Year(), start.Month(), start.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, start.Location())
		}
	}
	end := start.Add(defaultDuration)

	summary := entry.Title
	if entry.Opponent != nil && *entry.Opponent != "" {
		summary = fmt.Sprintf("%s gegen %s", entry.Title, *entry.Opponent)
	}

	location := ""
	if entry.VenueAddress != nil && *entry.VenueAddress != "" {
		location = *entry.VenueAddress
	} else if entry.LocationText != nil {
		location = *entry.LocationText
	}

	writeLine(b, "BEGIN:VEVENT")
	writeLine(b, fmt.Sprintf("UID:event-%d-%d@teammanager", entry.TeamID, entry.ID))
	writeLine(b, "DTSTAMP:"+now.Format(dateFormat)+"Z")
	writeLine(b, "DTSTART:"+start.Format(dateFormat))
	writeLine(b, "DTEND:"+end.Format(dateFormat))
	writeLine(b, "SUMMARY:"+escape(summary))
	if location != "" {
		writeLine(b, "LOCATION:"+escape(location))
	}
	writeLine(b, "END:VEVENT")
}

// writeLine folds content lines at 75 octets as the format requires.
func writeLine(b *strings.Builder, line string) {
	for len(line) > 75 {
		b.WriteString(line[:75])
		b.WriteString("\r\n ")
		line = line[75:]
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

// escape handles the characters RFC 5545 reserves in text values.
func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}
