package entities

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var weekdayByName = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

var clockRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)

// ExtractTime resolves a day reference ("today", "tomorrow", an explicit
// weekday name) and a clock time ("10:30", "9am") from text into an
// absolute UTC instant relative to now, per SPEC_FULL.md §4.4. Returns
// false when no recognizable clock time is present — a bare day reference
// without a time is not enough to schedule against.
func ExtractTime(text string, now time.Time) (time.Time, bool) {
	lower := strings.ToLower(text)

	day := resolveDay(lower, now)

	hour, minute, ok := resolveClock(lower)
	if !ok {
		return time.Time{}, false
	}

	result := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
	return result, true
}

func resolveDay(lower string, now time.Time) time.Time {
	today := now.UTC().Truncate(24 * time.Hour)

	if strings.Contains(lower, "tomorrow") {
		return today.AddDate(0, 0, 1)
	}
	if strings.Contains(lower, "today") {
		return today
	}

	for name, weekday := range weekdayByName {
		if !strings.Contains(lower, name) {
			continue
		}
		offset := (int(weekday) - int(today.Weekday()) + 7) % 7
		return today.AddDate(0, 0, offset)
	}

	return today
}

func resolveClock(lower string) (hour, minute int, ok bool) {
	matches := clockRe.FindAllStringSubmatch(lower, -1)
	for _, m := range matches {
		h, err := strconv.Atoi(m[1])
		if err != nil || h > 23 {
			continue
		}
		min := 0
		if m[2] != "" {
			min, err = strconv.Atoi(m[2])
			if err != nil || min > 59 {
				continue
			}
		}
		meridiem := m[3]

		if meridiem == "" && m[2] == "" {
			// A bare one- or two-digit number with no colon and no
			// am/pm marker is too ambiguous to treat as a clock time
			// (it's more likely a day-of-month or similar).
			continue
		}

		switch meridiem {
		case "pm":
			if h < 12 {
				h += 12
			}
		case "am":
			if h == 12 {
				h = 0
			}
		}

		return h, min, true
	}
	return 0, 0, false
}
