package logistics

import (
	"testing"
	"time"
)

func ptr[T any](value T) *T {
	return &value
}

func TestFlightEventSpecs(t *testing.T) {
	depart := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	arrive := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		flight       Flight
		wantCount    int
		wantTitle    string
		wantLocation string
		wantItemType string
	}{
		{
			name: "full-details",
			flight: Flight{
				Airline:          "AA",
				FlightNumber:     "123",
				DepartureAirport: "JFK",
				ArrivalAirport:   "LAX",
				Direction:        DirectionDeparture,
				DepartsAt:        &depart,
				ArrivesAt:        &arrive,
			},
			wantCount:    1,
			wantTitle:    "Flight AA 123",
			wantLocation: "JFK → LAX",
			wantItemType: DirectionDeparture,
		},
		{
			name: "no-airline",
			flight: Flight{
				FlightNumber: "DL456",
				DepartsAt:    &depart,
			},
			wantCount:    1,
			wantTitle:    "Flight DL456",
			wantItemType: "travel",
		},
		{
			name:      "no-departure-time",
			flight:    Flight{FlightNumber: "AA123", ArrivesAt: &arrive},
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specs := tt.flight.EventSpecs()
			if len(specs) != tt.wantCount {
				t.Fatalf("expected %d specs, got %d", tt.wantCount, len(specs))
			}
			if tt.wantCount == 0 {
				return
			}
			spec := specs[0]
			if spec.Title != tt.wantTitle {
				t.Fatalf("title = %q, want %q", spec.Title, tt.wantTitle)
			}
			if spec.Location != tt.wantLocation {
				t.Fatalf("location = %q, want %q", spec.Location, tt.wantLocation)
			}
			if spec.ItemType != tt.wantItemType {
				t.Fatalf("item type = %q, want %q", spec.ItemType, tt.wantItemType)
			}
			if !spec.StartsAt.Equal(depart) {
				t.Fatalf("starts_at = %v, want %v", spec.StartsAt, depart)
			}
		})
	}
}

func TestLodgingEventSpecs(t *testing.T) {
	checkIn := time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC)
	checkOut := time.Date(2024, 5, 2, 11, 0, 0, 0, time.UTC)

	t.Run("shared-record-emits-two-markers", func(t *testing.T) {
		lodging := Lodging{Name: "Grand Hotel", CheckInAt: &checkIn, CheckOutAt: &checkOut}
		specs := lodging.EventSpecs()
		if len(specs) != 2 {
			t.Fatalf("expected 2 markers, got %d", len(specs))
		}
		if specs[0].Title != "Check-in: Grand Hotel" || specs[1].Title != "Check-out: Grand Hotel" {
			t.Fatalf("unexpected titles %q, %q", specs[0].Title, specs[1].Title)
		}
		for _, spec := range specs {
			if spec.EndsAt == nil || spec.EndsAt.Sub(spec.StartsAt) != 15*time.Minute {
				t.Fatalf("markers must be 15 minutes long, got %v", spec.EndsAt)
			}
		}
	})

	t.Run("person-scoped-record-emits-nothing", func(t *testing.T) {
		lodging := Lodging{Name: "Grand Hotel", PersonID: ptr("person-1"), CheckInAt: &checkIn, CheckOutAt: &checkOut}
		if specs := lodging.EventSpecs(); len(specs) != 0 {
			t.Fatalf("person-scoped lodging must not emit shared markers, got %d", len(specs))
		}
	})

	t.Run("missing-moments-are-skipped", func(t *testing.T) {
		lodging := Lodging{Name: "Grand Hotel", CheckOutAt: &checkOut}
		specs := lodging.EventSpecs()
		if len(specs) != 1 || specs[0].Title != "Check-out: Grand Hotel" {
			t.Fatalf("expected only the check-out marker, got %v", specs)
		}
	})
}

func TestCateringEventSpecs(t *testing.T) {
	serves := time.Date(2024, 5, 1, 17, 0, 0, 0, time.UTC)

	t.Run("meal-marker", func(t *testing.T) {
		catering := Catering{Provider: "Soul Kitchen", MealType: "Dinner", ServesAt: &serves}
		specs := catering.EventSpecs()
		if len(specs) != 1 {
			t.Fatalf("expected 1 marker, got %d", len(specs))
		}
		if specs[0].Title != "Catering: Dinner" {
			t.Fatalf("unexpected title %q", specs[0].Title)
		}
		if specs[0].EndsAt == nil || specs[0].EndsAt.Sub(specs[0].StartsAt) != 30*time.Minute {
			t.Fatalf("marker must be 30 minutes long")
		}
	})

	t.Run("provider-fallback", func(t *testing.T) {
		catering := Catering{Provider: "Soul Kitchen", ServesAt: &serves}
		specs := catering.EventSpecs()
		if specs[0].Title != "Catering: Soul Kitchen" {
			t.Fatalf("unexpected title %q", specs[0].Title)
		}
	})

	t.Run("no-service-time", func(t *testing.T) {
		catering := Catering{MealType: "Dinner"}
		if specs := catering.EventSpecs(); len(specs) != 0 {
			t.Fatalf("expected no marker without a service time")
		}
	})
}
