package advancing

import "testing"

func TestEncodeGrid(t *testing.T) {
	rows := []GridRow{
		{ID: "row-1", Cells: map[string]string{"airline": "AA", "seat": "12F", "meal": ""}},
		{ID: "teamtravel_row-2", Cells: map[string]string{"airline": "DL"}},
	}

	writes, err := EncodeGrid("teamtravel", rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(writes) != 3 {
		t.Fatalf("expected 3 writes (empty cell dropped), got %d", len(writes))
	}
	if writes[0].FieldName != "teamtravel_row-1_airline" {
		t.Fatalf("unexpected field name %q", writes[0].FieldName)
	}
	if writes[1].FieldName != "teamtravel_row-1_seat" {
		t.Fatalf("unexpected field name %q", writes[1].FieldName)
	}
	// Prefixed row ids (the decode shape) re-encode without doubling.
	if writes[2].FieldName != "teamtravel_row-2_airline" {
		t.Fatalf("unexpected field name %q", writes[2].FieldName)
	}
	if writes[0].Section != "Teamtravel" {
		t.Fatalf("unexpected section %q", writes[0].Section)
	}
}

func TestEncodeGridRejectsSeparatorInColumnKey(t *testing.T) {
	_, err := EncodeGrid("teamtravel", []GridRow{
		{ID: "row-1", Cells: map[string]string{"seat_pref": "aisle"}},
	})
	if err == nil {
		t.Fatalf("expected ambiguous column key to be rejected")
	}
}

func TestDecodeGrid(t *testing.T) {
	fields := []Field{
		{FieldName: "teamtravel_row-1_airline", Value: "AA"},
		{FieldName: "teamtravel_row-1_seat", Value: "12F"},
		{FieldName: "teamtravel_row-2_airline", Value: "DL"},
		{FieldName: "othergrid_row-1_airline", Value: "UA"},
		{FieldName: "teamtravel_unknown-row_airline", Value: "WN"},
	}

	rows := DecodeGrid("teamtravel", fields, []string{"row-1", "row-2", "row-3"})
	if len(rows) != 3 {
		t.Fatalf("expected one row per known id, got %d", len(rows))
	}
	if rows[0].ID != "teamtravel_row-1" {
		t.Fatalf("unexpected row id %q", rows[0].ID)
	}
	if rows[0].Cells["airline"] != "AA" || rows[0].Cells["seat"] != "12F" {
		t.Fatalf("unexpected cells %v", rows[0].Cells)
	}
	if rows[1].Cells["airline"] != "DL" {
		t.Fatalf("unexpected cells %v", rows[1].Cells)
	}
	if len(rows[2].Cells) != 0 {
		t.Fatalf("row without fields must stay empty, got %v", rows[2].Cells)
	}
}

func TestGridRoundTrip(t *testing.T) {
	original := []GridRow{
		{ID: "row-1", Cells: map[string]string{"hotel": "Grand", "nights": "2"}},
		// Underscored row ids survive because the column key is always the
		// last segment.
		{ID: "crew_bus_2", Cells: map[string]string{"hotel": "Budget"}},
	}

	writes, err := EncodeGrid("arrivals", original)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	fields := make([]Field, 0, len(writes))
	for _, write := range writes {
		fields = append(fields, Field{FieldName: write.FieldName, Value: write.Value})
	}

	rows := DecodeGrid("arrivals", fields, []string{"row-1", "crew_bus_2"})
	if rows[0].Cells["hotel"] != "Grand" || rows[0].Cells["nights"] != "2" {
		t.Fatalf("round trip lost cells: %v", rows[0].Cells)
	}
	if rows[1].Cells["hotel"] != "Budget" {
		t.Fatalf("underscored row id did not round trip: %v", rows[1].Cells)
	}
}

func TestSplitFieldName(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		wantRow   string
		wantCol   string
		wantOK    bool
	}{
		{name: "simple", fieldName: "teamtravel_row-1_airline", wantRow: "row-1", wantCol: "airline", wantOK: true},
		{name: "underscored-row", fieldName: "teamtravel_crew_bus_2_hotel", wantRow: "crew_bus_2", wantCol: "hotel", wantOK: true},
		{name: "wrong-prefix", fieldName: "other_row-1_airline", wantOK: false},
		{name: "no-column", fieldName: "teamtravel_row-1", wantOK: false},
		{name: "trailing-separator", fieldName: "teamtravel_row-1_", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, col, ok := SplitFieldName("teamtravel", tt.fieldName)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && (row != tt.wantRow || col != tt.wantCol) {
				t.Fatalf("split = (%q, %q), want (%q, %q)", row, col, tt.wantRow, tt.wantCol)
			}
		})
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "teamtravel", want: "Teamtravel"},
		{input: "team_travel", want: "Team Travel"},
		{input: "arrival_flights", want: "Arrival Flights"},
	}
	for _, tt := range tests {
		if got := TitleCase(tt.input); got != tt.want {
			t.Fatalf("TitleCase(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
