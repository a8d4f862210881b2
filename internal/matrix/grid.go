package matrix

import "fmt"

// Grid is an in-memory Sheet. Unset cells read back as "".
type Grid struct {
	cells  map[[2]int]any
	maxRow int
	maxCol int
}

// NewGrid creates an empty grid.
func NewGrid() *Grid {
	return &Grid{cells: map[[2]int]any{}}
}

// SetCell implements Sheet.
func (g *Grid) SetCell(row, col int, value any) error {
	if row <= 0 || col <= 0 {
		return fmt.Errorf("invalid cell coordinates (%d,%d)", row, col)
	}
	g.cells[[2]int{row, col}] = value
	if row > g.maxRow {
		g.maxRow = row
	}
	if col > g.maxCol {
		g.maxCol = col
	}
	return nil
}

// Cell returns the value at (row, col).
func (g *Grid) Cell(row, col int) any {
	if value, ok := g.cells[[2]int{row, col}]; ok {
		return value
	}
	return ""
}

// Rows returns the used range from A1 as a dense table.
func (g *Grid) Rows() [][]any {
	rows := make([][]any, g.maxRow)
	for r := range rows {
		rows[r] = make([]any, g.maxCol)
		for c := range rows[r] {
			rows[r][c] = g.Cell(r+1, c+1)
		}
	}
	return rows
}
