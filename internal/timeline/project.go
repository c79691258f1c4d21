// Package timeline projects a day's heterogeneous events (show times,
// schedule items, per-person flights) into render-ready time slots. All
// functions are pure and take an explicit location; nothing here consults
// the machine's ambient timezone.
package timeline

import (
	"fmt"
	"sort"
	"time"
)

// Event is the projection input shape. Kind distinguishes show times from
// persisted schedule items and flight markers; the projector itself treats
// all kinds alike.
type Event struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Kind     string     `json:"kind"`
	Time     time.Time  `json:"time"`
	EndTime  *time.Time `json:"end_time"`
	Location string     `json:"location"`
}

// Slot groups the events whose local start time shares one HH:MM label.
type Slot struct {
	Label  string
	Events []Event
}

// Projection is the result of projecting one day.
type Projection struct {
	// Slots holds only non-empty labels, ordered chronologically.
	Slots []Slot
	// FullDayGrid holds all 48 half-hour labels from 00:00 to 23:30 so the
	// view keeps empty periods proportional; event lists may be empty.
	FullDayGrid []Slot
}

const (
	gridSlotMinutes   = 30
	gridSlotsPerDay   = 48
	minuteGranularity = time.Minute
)

// FilterToDay keeps the events whose local calendar date in loc equals day's.
func FilterToDay(events []Event, day time.Time, loc *time.Location) []Event {
	targetYear, targetMonth, targetDay := day.In(loc).Date()
	filtered := make([]Event, 0, len(events))
	for _, event := range events {
		year, month, dayOfMonth := event.Time.In(loc).Date()
		if year == targetYear && month == targetMonth && dayOfMonth == targetDay {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// Project buckets events by their exact local HH:MM start label. Callers are
// expected to pre-filter to the target day (FilterToDay); events on other
// dates still land in whatever label their clock time produces.
func Project(events []Event, loc *time.Location) Projection {
	byLabel := make(map[string][]Event)
	labels := make([]string, 0)
	for _, event := range events {
		local := event.Time.In(loc)
		label := fmt.Sprintf("%02d:%02d", local.Hour(), local.Minute())
		if _, seen := byLabel[label]; !seen {
			labels = append(labels, label)
		}
		byLabel[label] = append(byLabel[label], event)
	}

	// Zero-padded HH:MM sorts lexicographically in chronological order.
	sort.Strings(labels)

	slots := make([]Slot, 0, len(labels))
	for _, label := range labels {
		slots = append(slots, Slot{Label: label, Events: byLabel[label]})
	}

	grid := make([]Slot, 0, gridSlotsPerDay)
	for i := 0; i < gridSlotsPerDay; i++ {
		label := fmt.Sprintf("%02d:%02d", i/2, (i%2)*gridSlotMinutes)
		grid = append(grid, Slot{Label: label, Events: byLabel[label]})
	}

	return Projection{Slots: slots, FullDayGrid: grid}
}

// LayoutBox positions one event on a continuous pixel timeline.
type LayoutBox struct {
	Top    float64
	Height float64
}

// Layout maps an event's offset into the day and its duration to pixel
// coordinates. Height is clamped to minPx so zero and negative duration
// events stay clickable.
func Layout(event Event, dayStart time.Time, loc *time.Location, pxPerMinute, minPx float64) LayoutBox {
	start := event.Time.In(loc)
	offsetMinutes := start.Sub(dayStart.In(loc)) / minuteGranularity

	durationMinutes := time.Duration(0)
	if event.EndTime != nil {
		durationMinutes = event.EndTime.Sub(event.Time) / minuteGranularity
	}

	height := float64(durationMinutes) * pxPerMinute
	if height < minPx {
		height = minPx
	}
	return LayoutBox{
		Top:    float64(offsetMinutes) * pxPerMinute,
		Height: height,
	}
}

// EventDates returns the distinct local calendar dates (formatted 2006-01-02,
// sorted) that contain at least one event. Used to decorate date pickers.
func EventDates(events []Event, loc *time.Location) []string {
	seen := make(map[string]struct{})
	dates := make([]string, 0)
	for _, event := range events {
		date := event.Time.In(loc).Format("2006-01-02")
		if _, ok := seen[date]; ok {
			continue
		}
		seen[date] = struct{}{}
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}
