// Package shows holds the owning entity of the event-production domain: a
// show on a date, in a venue's timezone, with doors and set times.
package shows

import (
	"time"

	"github.com/DataflowSolutions/Oncore-sub001/internal/timeline"
)

// Show is one performance date. Timezone is the IANA name of the venue's
// zone; it anchors every local-calendar-day decision downstream.
type Show struct {
	ID        string     `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	Title     string     `gorm:"column:title;size:500;not null" json:"title"`
	Date      string     `gorm:"column:date;size:10;not null;index" json:"date"`
	Venue     string     `gorm:"column:venue;size:300;not null;default:''" json:"venue"`
	City      string     `gorm:"column:city;size:200;not null;default:''" json:"city"`
	Timezone  string     `gorm:"column:timezone;size:100;not null;default:'UTC'" json:"timezone"`
	DoorsAt   *time.Time `gorm:"column:doors_at" json:"doors_at"`
	SetTime   *time.Time `gorm:"column:set_time" json:"set_time"`
	CreatedAt time.Time  `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null;autoUpdateTime" json:"updated_at"`
}

// TableName provides the explicit table binding for GORM.
func (Show) TableName() string {
	return "shows"
}

// Location resolves the show's timezone, falling back to UTC when unset.
func (s Show) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(s.Timezone)
}

// TimeEvents exposes the show's own moments (doors, set time) in the
// projection shape. These are listed before schedule items and flights so
// same-slot ordering puts show times first.
func (s Show) TimeEvents() []timeline.Event {
	events := make([]timeline.Event, 0, 2)
	if s.DoorsAt != nil {
		events = append(events, timeline.Event{
			ID:    s.ID + ":doors",
			Title: "Doors",
			Kind:  "show",
			Time:  *s.DoorsAt,
		})
	}
	if s.SetTime != nil {
		events = append(events, timeline.Event{
			ID:    s.ID + ":set",
			Title: "Set Time",
			Kind:  "show",
			Time:  *s.SetTime,
		})
	}
	return events
}
