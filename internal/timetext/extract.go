// Package timetext recovers clock times embedded in free-form text, such as
// advancing notes ("Doors at 19:30", "Load in 2:15 PM").
package timetext

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// Two-digit hours only; a bare "2:15" must fall through to the
	// 12-hour pass so a trailing meridiem can disambiguate it.
	pattern24Hour = regexp.MustCompile(`\b([01][0-9]|2[0-3]):([0-5][0-9])\b`)
	pattern12Hour = regexp.MustCompile(`\b(1[0-2]|[1-9]):([0-5][0-9])\s*([AaPp])\.?[Mm]\.?\b`)
	// RE2 has no lookahead, so a 24-hour match trailed by a meridiem
	// ("12:00 AM") is detected separately and handed to the 12-hour pass.
	meridiemSuffix = regexp.MustCompile(`^\s*[AaPp]\.?[Mm]\.?\b`)
)

// TimeOfDay is a wall-clock moment with no date or zone attached.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// String renders the zero-padded HH:MM label used for slot keys.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Extract scans text for an embedded clock time. The 24-hour pattern wins
// over the 12-hour pattern; the first match in scan order is returned. The
// second result is false when no time is present.
func Extract(text string) (TimeOfDay, bool) {
	if loc := pattern24Hour.FindStringSubmatchIndex(text); loc != nil {
		if !meridiemSuffix.MatchString(text[loc[1]:]) {
			hour, _ := strconv.Atoi(text[loc[2]:loc[3]])
			minute, _ := strconv.Atoi(text[loc[4]:loc[5]])
			return TimeOfDay{Hour: hour, Minute: minute}, true
		}
	}

	if match := pattern12Hour.FindStringSubmatch(text); match != nil {
		hour, _ := strconv.Atoi(match[1])
		minute, _ := strconv.Atoi(match[2])
		meridiem := strings.ToUpper(match[3])
		if meridiem == "A" && hour == 12 {
			hour = 0
		}
		if meridiem == "P" && hour != 12 {
			hour += 12
		}
		return TimeOfDay{Hour: hour, Minute: minute}, true
	}

	return TimeOfDay{}, false
}

// ParseClock parses a bare HH:MM value, as stored by time-typed advancing
// fields. Unlike Extract it requires the whole string to be the clock value.
func ParseClock(value string) (TimeOfDay, bool) {
	trimmed := strings.TrimSpace(value)
	parts := strings.SplitN(trimmed, ":", 2)
	if len(parts) != 2 {
		return TimeOfDay{}, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, false
	}
	return TimeOfDay{Hour: hour, Minute: minute}, true
}
