package timeline

import (
	"testing"
	"time"
)

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	return loc
}

func TestFilterToDayUsesLocalCalendarDate(t *testing.T) {
	loc := newYork(t)
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, loc)

	events := []Event{
		// 01:30 UTC on May 2 is 21:30 on May 1 in New York.
		{ID: "late", Time: time.Date(2024, 5, 2, 1, 30, 0, 0, time.UTC)},
		// Noon UTC on May 1 is 08:00 local, same day.
		{ID: "mid", Time: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		// 02:00 UTC on May 1 is 22:00 on April 30 local.
		{ID: "prev", Time: time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC)},
	}

	filtered := FilterToDay(events, day, loc)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 events on the target day, got %d", len(filtered))
	}
	if filtered[0].ID != "late" || filtered[1].ID != "mid" {
		t.Fatalf("unexpected filtered set: %v", filtered)
	}
}

func TestProjectGroupsByLocalStartLabel(t *testing.T) {
	loc := newYork(t)

	events := []Event{
		{ID: "doors", Kind: "show", Time: time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)},   // 19:00 local
		{ID: "soundcheck", Time: time.Date(2024, 5, 1, 20, 30, 0, 0, time.UTC)},           // 16:30 local
		{ID: "guest-list", Time: time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)},            // 19:00 local
	}

	projection := Project(events, loc)

	if len(projection.Slots) != 2 {
		t.Fatalf("expected 2 sparse slots, got %d", len(projection.Slots))
	}
	if projection.Slots[0].Label != "16:30" || projection.Slots[1].Label != "19:00" {
		t.Fatalf("unexpected slot order: %s, %s", projection.Slots[0].Label, projection.Slots[1].Label)
	}
	shared := projection.Slots[1].Events
	if len(shared) != 2 || shared[0].ID != "doors" || shared[1].ID != "guest-list" {
		t.Fatalf("same-slot events must preserve discovery order: %v", shared)
	}
}

func TestProjectFullDayGridAlwaysHas48Slots(t *testing.T) {
	loc := time.UTC

	for _, events := range [][]Event{
		nil,
		{{ID: "one", Time: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)}},
	} {
		projection := Project(events, loc)
		if len(projection.FullDayGrid) != 48 {
			t.Fatalf("expected 48 grid slots, got %d", len(projection.FullDayGrid))
		}
		if projection.FullDayGrid[0].Label != "00:00" {
			t.Fatalf("unexpected first label %s", projection.FullDayGrid[0].Label)
		}
		if projection.FullDayGrid[47].Label != "23:30" {
			t.Fatalf("unexpected last label %s", projection.FullDayGrid[47].Label)
		}
	}
}

func TestProjectFullDayGridAttachesMatchingEvents(t *testing.T) {
	events := []Event{
		{ID: "on-boundary", Time: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)},
		{ID: "off-boundary", Time: time.Date(2024, 5, 1, 9, 45, 0, 0, time.UTC)},
	}

	projection := Project(events, time.UTC)

	var boundary Slot
	for _, slot := range projection.FullDayGrid {
		if slot.Label == "09:30" {
			boundary = slot
		}
	}
	if len(boundary.Events) != 1 || boundary.Events[0].ID != "on-boundary" {
		t.Fatalf("expected the 09:30 grid slot to carry the boundary event, got %v", boundary.Events)
	}

	// Off-boundary starts still appear in the sparse slots.
	if len(projection.Slots) != 2 || projection.Slots[1].Label != "09:45" {
		t.Fatalf("expected a sparse 09:45 slot, got %v", projection.Slots)
	}
}

func TestLayout(t *testing.T) {
	loc := time.UTC
	dayStart := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		event      Event
		wantTop    float64
		wantHeight float64
	}{
		{
			name:       "hour-long",
			event:      Event{Time: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), EndTime: &end},
			wantTop:    600,
			wantHeight: 60,
		},
		{
			name:       "no-end-clamped",
			event:      Event{Time: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
			wantTop:    600,
			wantHeight: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := Layout(tt.event, dayStart, loc, 1.0, 20.0)
			if box.Top != tt.wantTop {
				t.Fatalf("top = %v, want %v", box.Top, tt.wantTop)
			}
			if box.Height != tt.wantHeight {
				t.Fatalf("height = %v, want %v", box.Height, tt.wantHeight)
			}
		})
	}
}

func TestLayoutClampsNegativeDuration(t *testing.T) {
	end := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	event := Event{Time: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), EndTime: &end}
	box := Layout(event, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), time.UTC, 1.0, 15.0)
	if box.Height != 15.0 {
		t.Fatalf("negative duration must clamp to minimum, got %v", box.Height)
	}
}

func TestEventDatesDeduplicatesAndSorts(t *testing.T) {
	loc := newYork(t)
	events := []Event{
		{Time: time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)},
		{Time: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{Time: time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)},
		// 01:00 UTC May 2 is still May 1 local.
		{Time: time.Date(2024, 5, 2, 1, 0, 0, 0, time.UTC)},
	}

	dates := EventDates(events, loc)
	want := []string{"2024-05-01", "2024-05-03"}
	if len(dates) != len(want) {
		t.Fatalf("expected %d dates, got %d: %v", len(want), len(dates), dates)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Fatalf("dates[%d] = %s, want %s", i, dates[i], want[i])
		}
	}
}
