// Package viewport computes which part of a file is visible given the
// height of the view and the size of one character cell.
package viewport

// DefaultLineLength is the number of bytes shown per row.
const DefaultLineLength = 16

// Metrics is the size of one monospace character cell.
type Metrics struct {
	CellWidth  int
	CellHeight int
}

// Terminal metrics: every cell is one unit in both directions.
var Terminal = Metrics{CellWidth: 1, CellHeight: 1}

func (m Metrics) normalize() Metrics {
	if m.CellWidth < 1 {
		m.CellWidth = 1
	}
	if m.CellHeight < 1 {
		m.CellHeight = 1
	}
	return m
}

// Viewport tracks the scroll position over a file's line grid.
// Height is measured in the same unit as the cell metrics.
type Viewport struct {
	lineLength int
	metrics    Metrics

	size   int64
	height int

	// first visible line
	top int64
}

// New creates a viewport over an empty file.
func New(lineLength int, metrics Metrics) *Viewport {
	if lineLength < 1 {
		lineLength = DefaultLineLength
	}
	return &Viewport{
		lineLength: lineLength,
		metrics:    metrics.normalize(),
	}
}

// LineLength returns the number of bytes per row.
func (v *Viewport) LineLength() int {
	return v.lineLength
}

// Metrics returns the current cell metrics.
func (v *Viewport) Metrics() Metrics {
	return v.metrics
}

// SetMetrics changes the cell size, as happens when the font changes.
func (v *Viewport) SetMetrics(m Metrics) {
	v.metrics = m.normalize()
	v.clamp()
}

// FileSize returns the size of the file in bytes.
func (v *Viewport) FileSize() int64 {
	return v.size
}

// SetFileSize updates the file size and re-clamps the scroll position.
func (v *Viewport) SetFileSize(n int64) {
	if n < 0 {
		n = 0
	}
	v.size = n
	v.clamp()
}

// Height returns the viewport height.
func (v *Viewport) Height() int {
	return v.height
}

// Resize updates the viewport height and re-clamps the scroll position.
func (v *Viewport) Resize(height int) {
	if height < 0 {
		height = 0
	}
	v.height = height
	v.clamp()
}

// TotalLines returns the number of rows needed for the whole file.
func (v *Viewport) TotalLines() int64 {
	return (v.size + int64(v.lineLength) - 1) / int64(v.lineLength)
}

// VisibleLines returns how many rows are drawn, counting a partially
// visible last row.
func (v *Viewport) VisibleLines() int {
	ch := v.metrics.CellHeight
	return (v.height + ch - 1) / ch
}

// PageSize returns how many rows fit entirely in the viewport. It is
// never below 1 so that scrolling always makes progress.
func (v *Viewport) PageSize() int {
	page := v.height / v.metrics.CellHeight
	if page < 1 {
		page = 1
	}
	return page
}

// MaxScroll returns the largest valid scroll position.
func (v *Viewport) MaxScroll() int64 {
	max := v.TotalLines() - int64(v.PageSize())
	if max < 0 {
		return 0
	}
	return max
}

// Scroll returns the index of the first visible line.
func (v *Viewport) Scroll() int64 {
	return v.top
}

// ScrollTo moves the first visible line to line, clamped to the valid
// range, and returns the resulting position.
func (v *Viewport) ScrollTo(line int64) int64 {
	v.top = line
	v.clamp()
	return v.top
}

// ScrollBy scrolls by delta lines.
func (v *Viewport) ScrollBy(delta int64) int64 {
	return v.ScrollTo(v.top + delta)
}

// PageUp scrolls back by one page.
func (v *Viewport) PageUp() int64 {
	return v.ScrollBy(-int64(v.PageSize()))
}

// PageDown scrolls forward by one page.
func (v *Viewport) PageDown() int64 {
	return v.ScrollBy(int64(v.PageSize()))
}

// Home scrolls to the first line.
func (v *Viewport) Home() int64 {
	return v.ScrollTo(0)
}

// End scrolls to the last page.
func (v *Viewport) End() int64 {
	return v.ScrollTo(v.MaxScroll())
}

// Offset returns the file offset of the first visible byte.
func (v *Viewport) Offset() int64 {
	return v.OffsetForLine(v.top)
}

// OffsetForLine returns the file offset at which line starts.
func (v *Viewport) OffsetForLine(line int64) int64 {
	return line * int64(v.lineLength)
}

// LineForOffset returns the line that holds off.
func (v *Viewport) LineForOffset(off int64) int64 {
	if off < 0 {
		return 0
	}
	return off / int64(v.lineLength)
}

// VisibleRange returns the half-open byte range drawn in the viewport.
func (v *Viewport) VisibleRange() (start, end int64) {
	start = v.Offset()
	if start > v.size {
		start = v.size
	}
	end = start + int64(v.VisibleLines())*int64(v.lineLength)
	if end > v.size {
		end = v.size
	}
	return start, end
}

// RowCount returns the number of visible rows that carry data.
func (v *Viewport) RowCount() int {
	remaining := v.TotalLines() - v.top
	if remaining < 0 {
		return 0
	}
	if vis := int64(v.VisibleLines()); remaining > vis {
		return int(vis)
	}
	return int(remaining)
}

// EnsureVisible scrolls the least amount needed for the row holding off
// to be fully visible.
func (v *Viewport) EnsureVisible(off int64) int64 {
	line := v.LineForOffset(off)
	page := int64(v.PageSize())
	switch {
	case line < v.top:
		return v.ScrollTo(line)
	case line >= v.top+page:
		return v.ScrollTo(line - page + 1)
	}
	return v.top
}

// RowAt maps a y coordinate inside the viewport to a file line.
func (v *Viewport) RowAt(y int) (int64, bool) {
	if y < 0 || y >= v.height {
		return 0, false
	}
	line := v.top + int64(y/v.metrics.CellHeight)
	if line >= v.TotalLines() {
		return 0, false
	}
	return line, true
}

// Adjustment returns the scrollbar state for the current geometry.
func (v *Viewport) Adjustment() Adjustment {
	page := int64(v.PageSize())
	return Adjustment{
		Lower:         0,
		Upper:         v.TotalLines(),
		Value:         v.top,
		StepIncrement: 1,
		PageIncrement: page,
		PageSize:      page,
	}
}

func (v *Viewport) clamp() {
	if max := v.MaxScroll(); v.top > max {
		v.top = max
	}
	if v.top < 0 {
		v.top = 0
	}
}
