package automation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Schedule is a parsed five-field cron expression, or one of the
// @hourly, @daily, @weekly shorthands, or "@every <duration>".
type Schedule struct {
	every time.Duration

	minute, hour, dom, month, dow fieldSet
	domAny, dowAny                bool
}

type fieldSet map[int]bool

// ParseSchedule parses expr. Times are evaluated in the location of the
// time passed to Next.
func ParseSchedule(expr string) (*Schedule, error) {
	expr = strings.TrimSpace(expr)
	switch expr {
	case "@hourly":
		expr = "0 * * * *"
	case "@daily":
		expr = "0 0 * * *"
	case "@weekly":
		expr = "0 0 * * 0"
	}

	if rest, ok := strings.CutPrefix(expr, "@every "); ok {
		d, err := time.ParseDuration(strings.TrimSpace(rest))
		if err != nil {
			return nil, fmt.Errorf("invalid interval expression %q: %w", expr, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("interval must be > 0")
		}
		return &Schedule{every: d}, nil
	}

	parts := strings.Fields(expr)
	if len(parts) != 5 {
		return nil, fmt.Errorf("invalid cron expression %q (expected 5 fields)", expr)
	}

	s := &Schedule{domAny: parts[2] == "*", dowAny: parts[4] == "*"}
	var err error
	if s.minute, err = parseField(parts[0], 0, 59); err != nil {
		return nil, fmt.Errorf("invalid minute field: %w", err)
	}
	if s.hour, err = parseField(parts[1], 0, 23); err != nil {
		return nil, fmt.Errorf("invalid hour field: %w", err)
	}
	if s.dom, err = parseField(parts[2], 1, 31); err != nil {
		return nil, fmt.Errorf("invalid day-of-month field: %w", err)
	}
	if s.month, err = parseField(parts[3], 1, 12); err != nil {
		return nil, fmt.Errorf("invalid month field: %w", err)
	}
	if s.dow, err = parseField(parts[4], 0, 7); err != nil {
		return nil, fmt.Errorf("invalid day-of-week field: %w", err)
	}
	// 7 is Sunday too
	if s.dow[7] {
		s.dow[0] = true
	}
	return s, nil
}

// Next returns the first matching minute strictly after from, searching up
// to two years ahead. ok is false when nothing matches in that window.
func (s *Schedule) Next(from time.Time) (next time.Time, ok bool) {
	if s.every > 0 {
		return from.Add(s.every), true
	}

	candidate := from.Truncate(time.Minute).Add(time.Minute)
	limit := candidate.AddDate(2, 0, 0)
	for !candidate.After(limit) {
		switch {
		case !s.month[int(candidate.Month())]:
			candidate = time.Date(candidate.Year(), candidate.Month(), 1, 0, 0, 0, 0, candidate.Location()).AddDate(0, 1, 0)
		case !s.dayMatches(candidate):
			candidate = time.Date(candidate.Year(), candidate.Month(), candidate.Day(), 0, 0, 0, 0, candidate.Location()).AddDate(0, 0, 1)
		case !s.hour[candidate.Hour()]:
			candidate = time.Date(candidate.Year(), candidate.Month(), candidate.Day(), candidate.Hour(), 0, 0, 0, candidate.Location()).Add(time.Hour)
		case !s.minute[candidate.Minute()]:
			candidate = candidate.Add(time.Minute)
		default:
			return candidate, true
		}
	}
	return time.Time{}, false
}

// dayMatches follows cron: when both day fields are restricted either may
// match.
func (s *Schedule) dayMatches(t time.Time) bool {
	domMatch := s.dom[t.Day()]
	dowMatch := s.dow[int(t.Weekday())]
	switch {
	case s.domAny && s.dowAny:
		return true
	case s.domAny:
		return dowMatch
	case s.dowAny:
		return domMatch
	default:
		return domMatch || dowMatch
	}
}

func parseField(field string, min, max int) (fieldSet, error) {
	allowed := make(fieldSet, max-min+1)
	for _, item := range strings.Split(field, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, fmt.Errorf("empty token")
		}

		rangePart, stepPart, hasStep := strings.Cut(item, "/")
		step := 1
		if hasStep {
			n, err := strconv.Atoi(stepPart)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid step in %q", item)
			}
			step = n
		}

		start, end := min, max
		if rangePart != "*" {
			var err error
			if start, end, err = parseRange(rangePart, min, max); err != nil {
				return nil, err
			}
			if hasStep && !strings.Contains(rangePart, "-") {
				end = max
			}
		}
		for i := start; i <= end; i += step {
			allowed[i] = true
		}
	}
	return allowed, nil
}

func parseRange(part string, min, max int) (int, int, error) {
	if lo, hi, isRange := strings.Cut(part, "-"); isRange {
		start, err := strconv.Atoi(lo)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid range start %q", part)
		}
		end, err := strconv.Atoi(hi)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid range end %q", part)
		}
		if start > end || start < min || end > max {
			return 0, 0, fmt.Errorf("range out of bounds %q", part)
		}
		return start, end, nil
	}

	v, err := strconv.Atoi(part)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid value %q", part)
	}
	if v < min || v > max {
		return 0, 0, fmt.Errorf("value %d out of bounds [%d,%d]", v, min, max)
	}
	return v, v, nil
}
