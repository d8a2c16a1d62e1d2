// Package grid holds the client-independent parts of the detail grid
// session: the canonical column catalogue, per-user column settings with
// their reconciliation rules, row filtering/sorting, and the filter-driven
// aggregate totals.
package grid

// Column is one canonical column definition of the line-item grid.
type Column struct {
	Field         string `json:"field"`
	Title         string `json:"title"`
	Width         int    `json:"width"`
	Align         string `json:"align"` // left/center/right
	DefaultHidden bool   `json:"default_hidden"`
}

// Canonical returns the column catalogue in default display order. Persisted
// settings are reconciled against this list on every load.
func Canonical() []Column {
	return []Column{
		{Field: "material_code", Title: "Material Code", Width: 140, Align: "left"},
		{Field: "material_name", Title: "Material Name", Width: 220, Align: "left"},
		{Field: "code", Title: "Tender Code", Width: 160, Align: "left"},
		{Field: "hospital_name", Title: "Hospital", Width: 220, Align: "left"},
		{Field: "province", Title: "Province", Width: 120, Align: "left"},
		{Field: "region", Title: "Region", Width: 100, Align: "left"},
		{Field: "quota", Title: "Quota", Width: 110, Align: "right"},
		{Field: "won_quantity", Title: "Won Qty", Width: 110, Align: "right"},
		{Field: "unit", Title: "Unit", Width: 80, Align: "center", DefaultHidden: true},
		{Field: "unit_price", Title: "Unit Price", Width: 120, Align: "right", DefaultHidden: true},
		{Field: "status", Title: "Status", Width: 100, Align: "center"},
		{Field: "created_date", Title: "Created", Width: 120, Align: "center"},
		{Field: "signed_date", Title: "Signed", Width: 120, Align: "center"},
		{Field: "end_date", Title: "End", Width: 120, Align: "center"},
	}
}

// ColumnSetting is the persisted per-user state of one column. The order of
// the settings list is the display order.
type ColumnSetting struct {
	Field   string `json:"field"`
	Visible bool   `json:"visible"`
	Pinned  bool   `json:"pinned"`
	Width   int    `json:"width"`
	Align   string `json:"align"`
}

// SortConfig is the single persisted sort descriptor.
type SortConfig struct {
	Field     string `json:"field"`
	Direction string `json:"direction"` // asc/desc
}

// Settings is the full persisted blob for one user+view.
type Settings struct {
	Columns          []ColumnSetting `json:"columns"`
	FixedColumnsLeft int             `json:"fixed_columns_left"`
	Sort             *SortConfig     `json:"sort,omitempty"`
}

// DefaultSettings builds settings straight from the canonical catalogue.
func DefaultSettings() Settings {
	canonical := Canonical()
	cols := make([]ColumnSetting, 0, len(canonical))
	for _, c := range canonical {
		cols = append(cols, ColumnSetting{
			Field:   c.Field,
			Visible: !c.DefaultHidden,
			Width:   c.Width,
			Align:   c.Align,
		})
	}
	return Settings{Columns: cols}
}

// Reconcile aligns saved settings with the canonical catalogue: entries for
// columns that no longer exist are dropped, new canonical columns are
// appended (visible unless marked default-hidden), and pinned columns are
// moved ahead of unpinned ones while otherwise keeping relative order.
func Reconcile(saved Settings, canonical []Column) Settings {
	byField := make(map[string]Column, len(canonical))
	for _, c := range canonical {
		byField[c.Field] = c
	}

	kept := make([]ColumnSetting, 0, len(canonical))
	seen := make(map[string]bool, len(canonical))
	for _, cs := range saved.Columns {
		if _, ok := byField[cs.Field]; !ok {
			continue // obsolete column
		}
		if cs.Width <= 0 {
			cs.Width = byField[cs.Field].Width
		}
		if cs.Align == "" {
			cs.Align = byField[cs.Field].Align
		}
		kept = append(kept, cs)
		seen[cs.Field] = true
	}
	for _, c := range canonical {
		if !seen[c.Field] {
			kept = append(kept, ColumnSetting{
				Field:   c.Field,
				Visible: !c.DefaultHidden,
				Width:   c.Width,
				Align:   c.Align,
			})
		}
	}

	// Stable pinned-first ordering.
	ordered := make([]ColumnSetting, 0, len(kept))
	for _, cs := range kept {
		if cs.Pinned {
			ordered = append(ordered, cs)
		}
	}
	for _, cs := range kept {
		if !cs.Pinned {
			ordered = append(ordered, cs)
		}
	}

	saved.Columns = ordered
	if saved.Sort != nil {
		if _, ok := byField[saved.Sort.Field]; !ok {
			saved.Sort = nil
		}
	}
	return saved
}

// VisibleColumns resolves the settings to the canonical columns that are
// currently shown, in display order.
func VisibleColumns(st Settings, canonical []Column) []Column {
	byField := make(map[string]Column, len(canonical))
	for _, c := range canonical {
		byField[c.Field] = c
	}
	out := make([]Column, 0, len(st.Columns))
	for _, cs := range st.Columns {
		if !cs.Visible {
			continue
		}
		if c, ok := byField[cs.Field]; ok {
			out = append(out, c)
		}
	}
	return out
}
