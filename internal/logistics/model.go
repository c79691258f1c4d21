// Package logistics manages the travel, lodging, and catering records of a
// show, and keeps each record's derived calendar footprint in sync.
package logistics

import (
	"fmt"
	"strings"
	"time"

	"github.com/DataflowSolutions/Oncore-sub001/internal/schedule"
)

// Flight directions; used as the derived item's type so the UI can color
// arrivals and departures differently.
const (
	DirectionArrival   = "arrival"
	DirectionDeparture = "departure"
	defaultItemType    = "travel"
)

const (
	lodgingMarkerDuration  = 15 * time.Minute
	cateringMarkerDuration = 30 * time.Minute
)

// Flight is one person's (or the party's) flight segment for a show.
type Flight struct {
	ID               string     `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	ShowID           string     `gorm:"column:show_id;size:190;not null;index" json:"show_id"`
	PersonID         *string    `gorm:"column:person_id;size:190" json:"person_id"`
	Airline          string     `gorm:"column:airline;size:200;not null;default:''" json:"airline"`
	FlightNumber     string     `gorm:"column:flight_number;size:50;not null;default:''" json:"flight_number"`
	DepartureAirport string     `gorm:"column:departure_airport;size:10;not null;default:''" json:"departure_airport"`
	ArrivalAirport   string     `gorm:"column:arrival_airport;size:10;not null;default:''" json:"arrival_airport"`
	Direction        string     `gorm:"column:direction;size:20;not null;default:''" json:"direction"`
	DepartsAt        *time.Time `gorm:"column:departs_at" json:"departs_at"`
	ArrivesAt        *time.Time `gorm:"column:arrives_at" json:"arrives_at"`
	Notes            string     `gorm:"column:notes;type:text;not null;default:''" json:"notes"`
	CreatedAt        time.Time  `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;not null;autoUpdateTime" json:"updated_at"`
}

// TableName provides the explicit table binding for GORM.
func (Flight) TableName() string {
	return "flights"
}

// Tag returns the provenance tag for the flight's derived items.
func (f Flight) Tag() schedule.SourceTag {
	return schedule.SourceTag{Source: schedule.SourceFlight, SourceRef: f.ID}
}

// EventSpecs derives the flight's calendar footprint: at most one event,
// anchored at departure. Without a departure time the flight has no footprint.
func (f Flight) EventSpecs() []schedule.EventSpec {
	if f.DepartsAt == nil {
		return nil
	}

	title := "Flight"
	if detail := strings.TrimSpace(strings.TrimSpace(f.Airline) + " " + strings.TrimSpace(f.FlightNumber)); detail != "" {
		title = "Flight " + detail
	}

	location := ""
	if f.DepartureAirport != "" && f.ArrivalAirport != "" {
		location = fmt.Sprintf("%s → %s", f.DepartureAirport, f.ArrivalAirport)
	}

	itemType := f.Direction
	if itemType == "" {
		itemType = defaultItemType
	}

	return []schedule.EventSpec{{
		Title:    title,
		StartsAt: *f.DepartsAt,
		EndsAt:   f.ArrivesAt,
		Location: location,
		Notes:    f.Notes,
		ItemType: itemType,
	}}
}

// Lodging is a hotel stay. A nil PersonID means the record covers the whole
// party (a room block); person-scoped records do not appear on the shared
// schedule.
type Lodging struct {
	ID         string     `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	ShowID     string     `gorm:"column:show_id;size:190;not null;index" json:"show_id"`
	PersonID   *string    `gorm:"column:person_id;size:190" json:"person_id"`
	Name       string     `gorm:"column:name;size:300;not null;default:''" json:"name"`
	Address    string     `gorm:"column:address;size:500;not null;default:''" json:"address"`
	CheckInAt  *time.Time `gorm:"column:check_in_at" json:"check_in_at"`
	CheckOutAt *time.Time `gorm:"column:check_out_at" json:"check_out_at"`
	Notes      string     `gorm:"column:notes;type:text;not null;default:''" json:"notes"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;not null;autoUpdateTime" json:"updated_at"`
}

// TableName provides the explicit table binding for GORM.
func (Lodging) TableName() string {
	return "lodgings"
}

// Tag returns the provenance tag for the lodging's derived items.
func (l Lodging) Tag() schedule.SourceTag {
	return schedule.SourceTag{Source: schedule.SourceLodging, SourceRef: l.ID}
}

// EventSpecs derives up to two short markers, check-in and check-out, rather
// than one event spanning the stay. Person-scoped records derive nothing.
func (l Lodging) EventSpecs() []schedule.EventSpec {
	if l.PersonID != nil {
		return nil
	}

	name := strings.TrimSpace(l.Name)
	if name == "" {
		name = "Lodging"
	}

	specs := make([]schedule.EventSpec, 0, 2)
	if l.CheckInAt != nil {
		end := l.CheckInAt.Add(lodgingMarkerDuration)
		specs = append(specs, schedule.EventSpec{
			Title:    "Check-in: " + name,
			StartsAt: *l.CheckInAt,
			EndsAt:   &end,
			Location: l.Address,
			ItemType: schedule.SourceLodging,
		})
	}
	if l.CheckOutAt != nil {
		end := l.CheckOutAt.Add(lodgingMarkerDuration)
		specs = append(specs, schedule.EventSpec{
			Title:    "Check-out: " + name,
			StartsAt: *l.CheckOutAt,
			EndsAt:   &end,
			Location: l.Address,
			ItemType: schedule.SourceLodging,
		})
	}
	return specs
}

// Catering is one meal service for the show day.
type Catering struct {
	ID        string     `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	ShowID    string     `gorm:"column:show_id;size:190;not null;index" json:"show_id"`
	Provider  string     `gorm:"column:provider;size:300;not null;default:''" json:"provider"`
	MealType  string     `gorm:"column:meal_type;size:100;not null;default:''" json:"meal_type"`
	ServesAt  *time.Time `gorm:"column:serves_at" json:"serves_at"`
	Headcount int        `gorm:"column:headcount;not null;default:0" json:"headcount"`
	Notes     string     `gorm:"column:notes;type:text;not null;default:''" json:"notes"`
	CreatedAt time.Time  `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null;autoUpdateTime" json:"updated_at"`
}

// TableName provides the explicit table binding for GORM.
func (Catering) TableName() string {
	return "caterings"
}

// Tag returns the provenance tag for the catering record's derived items.
func (c Catering) Tag() schedule.SourceTag {
	return schedule.SourceTag{Source: schedule.SourceCatering, SourceRef: c.ID}
}

// EventSpecs derives at most one 30-minute marker at the service time.
func (c Catering) EventSpecs() []schedule.EventSpec {
	if c.ServesAt == nil {
		return nil
	}

	label := strings.TrimSpace(c.MealType)
	if label == "" {
		label = strings.TrimSpace(c.Provider)
	}
	title := "Catering"
	if label != "" {
		title = "Catering: " + label
	}

	end := c.ServesAt.Add(cateringMarkerDuration)
	return []schedule.EventSpec{{
		Title:    title,
		StartsAt: *c.ServesAt,
		EndsAt:   &end,
		Notes:    c.Notes,
		ItemType: schedule.SourceCatering,
	}}
}
