package models

import "fmt"

// Table adalah satu meja pada denah. X dan Y adalah offset piksel dari posisi default meja di areanya.
type Table struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	InUse bool    `json:"inUse"`
	Area  string  `json:"area"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

const TableIDPrefix = "mesa-"

// TableID builds the id for the n-th table, e.g. "mesa-3".
func TableID(n int) string {
	return fmt.Sprintf("%s%d", TableIDPrefix, n)
}

// TableLabel builds the display label for the n-th table, e.g. "Mesa 3".
func TableLabel(n int) string {
	return fmt.Sprintf("Mesa %d", n)
}

// NewTable returns a free table at the default slot of the given area.
func NewTable(n int, area string) Table {
	return Table{
		ID:    TableID(n),
		Label: TableLabel(n),
		InUse: false,
		Area:  area,
	}
}

// DefaultTables -> six free tables, two per default area.
func DefaultTables() []Table {
	return []Table{
		NewTable(1, "area-1"),
		NewTable(2, "area-1"),
		NewTable(3, "area-2"),
		NewTable(4, "area-2"),
		NewTable(5, "area-3"),
		NewTable(6, "area-3"),
	}
}
