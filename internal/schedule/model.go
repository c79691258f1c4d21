package schedule

import (
	"time"
)

// Source constants tag auto-generated items with the kind of logistics
// record that produced them.
const (
	SourceFlight    = "flight"
	SourceLodging   = "lodging"
	SourceCatering  = "catering"
	SourceAdvancing = "advancing"
)

// Visibility controls who may see a schedule item.
const (
	VisibilityAll  = "all"
	VisibilityTeam = "team"
)

// Item models one row of a show's calendar. Auto-generated items carry a
// provenance tag (Source, SourceRef) pointing at the logistics record that
// produced them; manual items leave both empty.
type Item struct {
	ID            string     `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	ShowID        string     `gorm:"column:show_id;size:190;not null;index:idx_schedule_items_show,priority:1" json:"show_id"`
	Title         string     `gorm:"column:title;size:500;not null" json:"title"`
	StartsAt      time.Time  `gorm:"column:starts_at;not null;index:idx_schedule_items_show,priority:2" json:"starts_at"`
	EndsAt        *time.Time `gorm:"column:ends_at" json:"ends_at"`
	Location      string     `gorm:"column:location;size:500;not null;default:''" json:"location"`
	Notes         string     `gorm:"column:notes;type:text;not null;default:''" json:"notes"`
	ItemType      string     `gorm:"column:item_type;size:100;not null;default:''" json:"item_type"`
	Visibility    string     `gorm:"column:visibility;size:100;not null;default:'all'" json:"visibility"`
	AutoGenerated bool       `gorm:"column:auto_generated;not null;default:false" json:"auto_generated"`
	Source        string     `gorm:"column:source;size:100;not null;default:'';index:idx_schedule_items_tag,priority:1" json:"source"`
	SourceRef     string     `gorm:"column:source_ref;size:190;not null;default:'';index:idx_schedule_items_tag,priority:2" json:"source_ref"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;not null;autoUpdateTime" json:"updated_at"`
}

// TableName provides the explicit table binding for GORM.
func (Item) TableName() string {
	return "schedule_items"
}

// SourceTag identifies the slice of auto-generated items owned by one
// logistics record.
type SourceTag struct {
	Source    string
	SourceRef string
}

// EventSpec describes one calendar event a logistics record implies. A zero
// StartsAt marks the moment as unresolvable; the writer skips it silently.
type EventSpec struct {
	Title    string
	StartsAt time.Time
	EndsAt   *time.Time
	Location string
	Notes    string
	ItemType string
}

// Resolvable reports whether the spec carries a usable start timestamp.
func (e EventSpec) Resolvable() bool {
	return !e.StartsAt.IsZero()
}

// matches reports whether an existing item already embodies the spec. Used
// to detect no-op syncs; identity (ID) is deliberately excluded.
func (e EventSpec) matches(item Item) bool {
	if item.Title != e.Title || !item.StartsAt.Equal(e.StartsAt) {
		return false
	}
	if (item.EndsAt == nil) != (e.EndsAt == nil) {
		return false
	}
	if item.EndsAt != nil && !item.EndsAt.Equal(*e.EndsAt) {
		return false
	}
	return item.Location == e.Location && item.Notes == e.Notes && item.ItemType == e.ItemType
}
