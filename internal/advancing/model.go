// Package advancing stores the free-form production-advance fields exchanged
// between the two parties of a show, including the grid-backed sections that
// flatten tabular UI data into composite field names.
package advancing

import "time"

// Party and status values for advancing fields.
const (
	PartyFromUs  = "from_us"
	PartyFromYou = "from_you"

	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
)

// Field types the schedule derivation batch understands.
const (
	FieldTypeTime = "time"
	FieldTypeText = "text"
)

// Session groups the advancing fields of one show.
type Session struct {
	ID        string    `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	ShowID    string    `gorm:"column:show_id;size:190;not null;index" json:"show_id"`
	Title     string    `gorm:"column:title;size:300;not null;default:''" json:"title"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime" json:"updated_at"`
}

// TableName provides the explicit table binding for GORM.
func (Session) TableName() string {
	return "advancing_sessions"
}

// Field is one advancing datum. Grid-backed sections store cells under
// synthetic composite names of the form <gridType>_<rowId>_<columnKey>; an
// empty Value means the field has never been filled in.
type Field struct {
	ID        string    `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	SessionID string    `gorm:"column:session_id;size:190;not null;index:idx_advancing_fields_session,priority:1" json:"session_id"`
	Section   string    `gorm:"column:section;size:200;not null;default:''" json:"section"`
	FieldName string    `gorm:"column:field_name;size:400;not null;index:idx_advancing_fields_session,priority:2" json:"field_name"`
	FieldType string    `gorm:"column:field_type;size:50;not null;default:'text'" json:"field_type"`
	Value     string    `gorm:"column:value;type:text;not null;default:''" json:"value"`
	PartyType string    `gorm:"column:party_type;size:50;not null;default:''" json:"party_type"`
	Status    string    `gorm:"column:status;size:50;not null;default:'pending'" json:"status"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime" json:"updated_at"`
}

// TableName provides the explicit table binding for GORM.
func (Field) TableName() string {
	return "advancing_fields"
}
