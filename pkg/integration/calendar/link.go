package calendar

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mklimuk/semester-pilot/pkg/model"
)

const (
	renderURL = "https://calendar.google.com/calendar/render"

	// EventDuration is the length of every exported schedule slot.
	EventDuration = 2 * time.Hour

	utcStamp = "20060102T150405Z"
)

// ParseClock parses an "HH:MM" schedule time.
func ParseClock(hhmm string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	return t.Hour(), t.Minute(), nil
}

// NextOccurrence returns the next time day at hhmm happens, in now's
// location. Today counts only while that time has not passed yet.
func NextOccurrence(day model.Weekday, hhmm string, now time.Time) (time.Time, error) {
	target := day.Index()
	if target < 0 {
		return time.Time{}, fmt.Errorf("unknown weekday %q", day)
	}
	hour, minute, err := ParseClock(hhmm)
	if err != nil {
		return time.Time{}, err
	}

	days := target - int(now.Weekday())
	if days < 0 {
		days += 7
	}
	start := time.Date(now.Year(), now.Month(), now.Day()+days, hour, minute, 0, 0, now.Location())
	if days == 0 && start.Before(now) {
		start = start.AddDate(0, 0, 7)
	}
	return start, nil
}

// EventLink builds a "create event" URL for the next occurrence of a
// schedule slot.
func EventLink(activity string, day model.Weekday, hhmm string, now time.Time, details string) (string, error) {
	start, err := NextOccurrence(day, hhmm, now)
	if err != nil {
		return "", err
	}
	end := start.Add(EventDuration)

	text := strings.ReplaceAll(url.QueryEscape(activity), "+", "%20")
	dates := start.UTC().Format(utcStamp) + "/" + end.UTC().Format(utcStamp)

	return fmt.Sprintf("%s?action=TEMPLATE&text=%s&dates=%s&details=%s&sf=true&output=xml",
		renderURL, text, dates, url.QueryEscape(details)), nil
}
