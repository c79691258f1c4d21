package advancing

import (
	"fmt"
	"sort"
	"strings"
)

// The backing store has no tabular concept, so grid cells are flattened into
// field names of the form <gridType>_<rowId>_<columnKey>. Decoding takes the
// last underscore-delimited segment as the column key; everything between the
// grid-type prefix and that segment is the row id. Row ids may therefore
// contain underscores, column keys must not. Encode enforces that, because a
// column key with a separator could not be told apart from the tail of a row
// id on the way back out.
const fieldSeparator = "_"

const defaultGridSortOrder = 1000

// GridRow is the tabular view model: one row identity and its column values.
type GridRow struct {
	ID    string            `json:"id"`
	Cells map[string]string `json:"cells"`
}

// FieldWrite is one cell flattened into a field upsert.
type FieldWrite struct {
	FieldName string
	Section   string
	Value     string
	SortOrder int
}

// EncodeGrid flattens rows into field writes. Empty cells are not written.
// Row ids may be bare ("row-1") or carry the decode-shape prefix
// ("teamtravel_row-1"); the prefix is stripped before re-encoding so the
// codec round-trips.
func EncodeGrid(gridType string, rows []GridRow) ([]FieldWrite, error) {
	if gridType == "" {
		return nil, fmt.Errorf("advancing: grid type is required")
	}
	section := TitleCase(gridType)

	writes := make([]FieldWrite, 0)
	for _, row := range rows {
		rowID := strings.TrimPrefix(row.ID, gridType+fieldSeparator)
		if rowID == "" {
			return nil, fmt.Errorf("advancing: grid row id is required")
		}
		columnKeys := make([]string, 0, len(row.Cells))
		for columnKey := range row.Cells {
			columnKeys = append(columnKeys, columnKey)
		}
		sort.Strings(columnKeys)

		for _, columnKey := range columnKeys {
			if strings.Contains(columnKey, fieldSeparator) {
				return nil, fmt.Errorf("advancing: column key %q must not contain %q", columnKey, fieldSeparator)
			}
			value := row.Cells[columnKey]
			if columnKey == "" || value == "" {
				continue
			}
			writes = append(writes, FieldWrite{
				FieldName: gridType + fieldSeparator + rowID + fieldSeparator + columnKey,
				Section:   section,
				Value:     value,
				SortOrder: defaultGridSortOrder,
			})
		}
	}
	return writes, nil
}

// DecodeGrid materializes rows from flat fields. Every known row id gets a
// row (possibly empty) with id "<gridType>_<rowId>", in the given order;
// fields whose names do not match a known row are dropped.
func DecodeGrid(gridType string, fields []Field, knownRowIDs []string) []GridRow {
	rows := make([]GridRow, 0, len(knownRowIDs))
	index := make(map[string]int, len(knownRowIDs))
	for _, rowID := range knownRowIDs {
		fullID := gridType + fieldSeparator + rowID
		index[rowID] = len(rows)
		rows = append(rows, GridRow{ID: fullID, Cells: make(map[string]string)})
	}

	for _, field := range fields {
		rowID, columnKey, ok := SplitFieldName(gridType, field.FieldName)
		if !ok {
			continue
		}
		position, known := index[rowID]
		if !known {
			continue
		}
		rows[position].Cells[columnKey] = field.Value
	}
	return rows
}

// SplitFieldName recovers (rowId, columnKey) from a composite field name.
// The last underscore-delimited segment is the column key; this tie-break
// makes underscored row ids decodable but is ambiguous if a column key ever
// contains the separator, which EncodeGrid refuses to produce.
func SplitFieldName(gridType, fieldName string) (string, string, bool) {
	prefix := gridType + fieldSeparator
	if !strings.HasPrefix(fieldName, prefix) {
		return "", "", false
	}
	remainder := strings.TrimPrefix(fieldName, prefix)
	cut := strings.LastIndex(remainder, fieldSeparator)
	if cut <= 0 || cut == len(remainder)-1 {
		return "", "", false
	}
	return remainder[:cut], remainder[cut+1:], true
}

// TitleCase renders a grid type as a section heading: "team_travel" becomes
// "Team Travel".
func TitleCase(gridType string) string {
	words := strings.Split(gridType, fieldSeparator)
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
