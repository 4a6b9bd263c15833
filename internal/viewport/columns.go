package viewport

// Columns lays out side-by-side text columns measured in character cells.
type Columns struct {
	metrics Metrics
	gap     int
	cells   []int
}

// NewColumns builds a layout of columns with the given widths in cells,
// separated by gap cells.
func NewColumns(m Metrics, gap int, cells ...int) Columns {
	if gap < 0 {
		gap = 0
	}
	widths := make([]int, len(cells))
	for i, c := range cells {
		if c < 0 {
			c = 0
		}
		widths[i] = c
	}
	return Columns{metrics: m.normalize(), gap: gap, cells: widths}
}

// Len returns the number of columns.
func (c Columns) Len() int {
	return len(c.cells)
}

// X returns the left edge of column i.
func (c Columns) X(i int) int {
	x := 0
	for j := 0; j < i && j < len(c.cells); j++ {
		x += (c.cells[j] + c.gap) * c.metrics.CellWidth
	}
	return x
}

// ColumnWidth returns the width of column i.
func (c Columns) ColumnWidth(i int) int {
	if i < 0 || i >= len(c.cells) {
		return 0
	}
	return c.cells[i] * c.metrics.CellWidth
}

// Width returns the total width of all columns and the gaps between them.
func (c Columns) Width() int {
	if len(c.cells) == 0 {
		return 0
	}
	n := len(c.cells) - 1
	return c.X(n) + c.ColumnWidth(n)
}

// ColumnAt returns the column under x and the cell within it. Gaps and
// positions past the last column report ok=false.
func (c Columns) ColumnAt(x int) (col, cell int, ok bool) {
	if x < 0 {
		return 0, 0, false
	}
	for i := range c.cells {
		left := c.X(i)
		if x >= left && x < left+c.ColumnWidth(i) {
			return i, (x - left) / c.metrics.CellWidth, true
		}
	}
	return 0, 0, false
}
