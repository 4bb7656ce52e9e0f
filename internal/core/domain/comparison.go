package domain

import "sort"

// ComparisonRow is one field of a two-listing diff. Left or Right is nil
// when that side lacks the field.
type ComparisonRow struct {
	Field     string `json:"field"`
	Left      *Field `json:"left"`
	Right     *Field `json:"right"`
	Different bool   `json:"different"`
}

// Comparison is a field-level diff between two listing states.
type Comparison struct {
	LeftID          string          `json:"left_id"`
	RightID         string          `json:"right_id"`
	LeftSnapshotID  string          `json:"left_snapshot_id,omitempty"`
	RightSnapshotID string          `json:"right_snapshot_id,omitempty"`
	Fields          []ComparisonRow `json:"fields"`
}

// Compare diffs two listings over the union of their field names, sorted by
// name. Only values are compared; evidence never affects Different. An
// absent field compares as null.
func Compare(left, right *Listing) Comparison {
	names := make(map[string]struct{}, len(left.Fields)+len(right.Fields))
	for name := range left.Fields {
		names[name] = struct{}{}
	}
	for name := range right.Fields {
		names[name] = struct{}{}
	}
	ordered := make([]string, 0, len(names))
	for name := range names {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)

	rows := make([]ComparisonRow, 0, len(ordered))
	for _, name := range ordered {
		row := ComparisonRow{Field: name}
		lv, rv := NullValue(), NullValue()
		if f, ok := left.Fields[name]; ok {
			c := f.Clone()
			row.Left = &c
			lv = f.Value
		}
		if f, ok := right.Fields[name]; ok {
			c := f.Clone()
			row.Right = &c
			rv = f.Value
		}
		row.Different = !lv.Equal(rv)
		rows = append(rows, row)
	}

	return Comparison{
		LeftID:          left.ID,
		RightID:         right.ID,
		LeftSnapshotID:  left.SnapshotID,
		RightSnapshotID: right.SnapshotID,
		Fields:          rows,
	}
}

// DifferentFields returns the names of rows marked different.
func (c *Comparison) DifferentFields() []string {
	var names []string
	for _, row := range c.Fields {
		if row.Different {
			names = append(names, row.Field)
		}
	}
	return names
}
