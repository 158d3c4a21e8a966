// Package calendar generates iCalendar documents for tryout listings.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/nathannam/aau-tryouts/internal/tryouts"
)

// GenerateICS generates an iCalendar (.ics) document for a tryout.
func GenerateICS(tr tryouts.Tryout) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//AAU Tryouts//aau-tryouts//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	ics.WriteString("BEGIN:VEVENT\r\n")

	ics.WriteString(fmt.Sprintf("UID:%s@aau-tryouts\r\n", tr.ID))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(time.Now().UTC())))

	start, end := eventWindow(tr)
	ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICSTime(start)))
	ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICSTime(end)))

	summary := fmt.Sprintf("Tryout - %s (%s %s)", tr.TeamName, tr.AgeGroup, tr.Gender)
	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(summary)))

	var details []string
	if tr.OrganizationName != "" {
		details = append(details, tr.OrganizationName)
	}
	if tr.Cost != "" {
		details = append(details, fmt.Sprintf("Cost: %s", tr.Cost))
	}
	if tr.RegistrationURL != "" {
		details = append(details, fmt.Sprintf("Register at: %s", tr.RegistrationURL))
	}
	if tr.Notes != "" {
		details = append(details, tr.Notes)
	}
	ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(strings.Join(details, "\n"))))

	location := tr.Venue
	if tr.Address != "" {
		location = fmt.Sprintf("%s, %s", location, tr.Address)
	}
	if tr.City != "" {
		location = fmt.Sprintf("%s, %s", location, tr.City)
	}
	ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(location)))

	if tr.WebsiteURL != "" {
		ics.WriteString(fmt.Sprintf("URL:%s\r\n", tr.WebsiteURL))
	}

	status := "CONFIRMED"
	if tr.ScheduleStatus == "tentative" || tr.ScheduleStatus == "tba" {
		status = "TENTATIVE"
	}
	ics.WriteString(fmt.Sprintf("STATUS:%s\r\n", status))

	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")

	ics.WriteString("END:VEVENT\r\n")
	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String()
}

// eventWindow derives the event start and end times from the tryout's date
// and time fields. Unparseable dates fall back to one week out; a missing end
// time defaults to two hours after the start.
func eventWindow(tr tryouts.Tryout) (time.Time, time.Time) {
	day, err := time.Parse("2006-01-02", tr.TryoutDate)
	if err != nil {
		day = time.Now().AddDate(0, 0, 7)
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC)
	if t, err := time.Parse("15:04", tr.StartTime); err == nil {
		start = time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	}

	end := start.Add(2 * time.Hour)
	if t, err := time.Parse("15:04", tr.EndTime); err == nil {
		candidate := time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
		if candidate.After(start) {
			end = candidate
		}
	}

	return start, end
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters according to RFC 5545
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
