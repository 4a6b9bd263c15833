package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	v := New(0, Metrics{})
	assert.Equal(t, DefaultLineLength, v.LineLength())
	assert.Equal(t, Terminal, v.Metrics())
	assert.Equal(t, int64(0), v.TotalLines())
	assert.Equal(t, 0, v.VisibleLines())
	assert.Equal(t, 1, v.PageSize())
}

func TestTotalLines(t *testing.T) {
	tests := []struct {
		size int64
		want int64
	}{
		{0, 0},
		{1, 1},
		{16, 1},
		{17, 2},
		{32, 2},
		{1000, 63},
	}
	for _, tt := range tests {
		v := New(16, Terminal)
		v.SetFileSize(tt.size)
		assert.Equal(t, tt.want, v.TotalLines(), "size %d", tt.size)
	}
}

func TestVisibleLinesRoundsPartialRowUp(t *testing.T) {
	// 12px font plus 2px leading, as a desktop renderer would measure it
	v := New(16, Metrics{CellWidth: 7, CellHeight: 14})

	v.Resize(140)
	assert.Equal(t, 10, v.VisibleLines())
	assert.Equal(t, 10, v.PageSize())

	v.Resize(145)
	assert.Equal(t, 11, v.VisibleLines())
	assert.Equal(t, 10, v.PageSize())

	v.Resize(5)
	assert.Equal(t, 1, v.VisibleLines())
	assert.Equal(t, 1, v.PageSize())
}

func TestScrollClamping(t *testing.T) {
	v := New(16, Terminal)
	v.SetFileSize(100 * 16)
	v.Resize(10)

	assert.Equal(t, int64(90), v.MaxScroll())
	assert.Equal(t, int64(90), v.ScrollTo(500))
	assert.Equal(t, int64(0), v.ScrollTo(-3))
	assert.Equal(t, int64(5), v.ScrollBy(5))
	assert.Equal(t, int64(15), v.PageDown())
	assert.Equal(t, int64(5), v.PageUp())
	assert.Equal(t, int64(90), v.End())
	assert.Equal(t, int64(0), v.Home())
}

func TestSmallFileNeverScrolls(t *testing.T) {
	v := New(16, Terminal)
	v.SetFileSize(40)
	v.Resize(24)

	assert.Equal(t, int64(0), v.MaxScroll())
	assert.Equal(t, int64(0), v.ScrollTo(2))
	assert.Equal(t, 3, v.RowCount())
}

func TestOffsetMapping(t *testing.T) {
	v := New(16, Terminal)
	v.SetFileSize(4096)
	v.Resize(8)
	v.ScrollTo(3)

	assert.Equal(t, int64(48), v.Offset())
	assert.Equal(t, int64(3), v.LineForOffset(48))
	assert.Equal(t, int64(3), v.LineForOffset(63))
	assert.Equal(t, int64(0), v.LineForOffset(-1))
	assert.Equal(t, int64(160), v.OffsetForLine(10))
}

func TestVisibleRange(t *testing.T) {
	v := New(16, Terminal)
	v.SetFileSize(100)
	v.Resize(4)

	start, end := v.VisibleRange()
	assert.Equal(t, int64(0), start)
	assert.Equal(t, int64(64), end)

	v.End()
	start, end = v.VisibleRange()
	assert.Equal(t, int64(48), start)
	assert.Equal(t, int64(100), end)
	assert.Equal(t, 4, v.RowCount())
}

func TestVisibleRangeEmptyFile(t *testing.T) {
	v := New(16, Terminal)
	v.Resize(10)

	start, end := v.VisibleRange()
	assert.Equal(t, int64(0), start)
	assert.Equal(t, int64(0), end)
	assert.Equal(t, 0, v.RowCount())
}

func TestResizeReclamps(t *testing.T) {
	v := New(16, Terminal)
	v.SetFileSize(50 * 16)
	v.Resize(10)
	v.End()
	require.Equal(t, int64(40), v.Scroll())

	v.Resize(20)
	assert.Equal(t, int64(30), v.Scroll())

	v.Resize(100)
	assert.Equal(t, int64(0), v.Scroll())
}

func TestShrinkingFileReclamps(t *testing.T) {
	v := New(16, Terminal)
	v.SetFileSize(50 * 16)
	v.Resize(10)
	v.ScrollTo(35)

	v.SetFileSize(20 * 16)
	assert.Equal(t, int64(10), v.Scroll())

	v.SetFileSize(0)
	assert.Equal(t, int64(0), v.Scroll())
}

func TestSetMetricsReclamps(t *testing.T) {
	v := New(16, Metrics{CellWidth: 8, CellHeight: 10})
	v.SetFileSize(30 * 16)
	v.Resize(100)
	v.End()
	require.Equal(t, int64(20), v.Scroll())

	v.SetMetrics(Metrics{CellWidth: 4, CellHeight: 5})
	assert.Equal(t, 20, v.PageSize())
	assert.Equal(t, int64(10), v.Scroll())
}

func TestEnsureVisible(t *testing.T) {
	v := New(16, Terminal)
	v.SetFileSize(100 * 16)
	v.Resize(10)

	assert.Equal(t, int64(0), v.EnsureVisible(9*16))
	assert.Equal(t, int64(1), v.EnsureVisible(10*16))
	assert.Equal(t, int64(41), v.EnsureVisible(50*16+3))
	assert.Equal(t, int64(20), v.EnsureVisible(20*16))
	assert.Equal(t, int64(20), v.EnsureVisible(25*16))
}

func TestEnsureVisibleIgnoresPartialRow(t *testing.T) {
	v := New(16, Metrics{CellWidth: 1, CellHeight: 10})
	v.SetFileSize(100 * 16)
	v.Resize(35)

	// three full rows, the fourth is cut off and does not count
	assert.Equal(t, int64(1), v.EnsureVisible(3*16))
}

func TestRowAt(t *testing.T) {
	v := New(16, Metrics{CellWidth: 1, CellHeight: 10})
	v.SetFileSize(5 * 16)
	v.Resize(100)

	line, ok := v.RowAt(25)
	assert.True(t, ok)
	assert.Equal(t, int64(2), line)

	_, ok = v.RowAt(60)
	assert.False(t, ok)

	_, ok = v.RowAt(-1)
	assert.False(t, ok)
}

func TestAdjustmentTracksViewport(t *testing.T) {
	v := New(16, Terminal)
	v.SetFileSize(1000 * 16)
	v.Resize(25)
	v.ScrollTo(100)

	adj := v.Adjustment()
	assert.Equal(t, int64(0), adj.Lower)
	assert.Equal(t, int64(1000), adj.Upper)
	assert.Equal(t, int64(100), adj.Value)
	assert.Equal(t, int64(25), adj.PageSize)
	assert.Equal(t, int64(25), adj.PageIncrement)
	assert.Equal(t, int64(1), adj.StepIncrement)
	assert.Equal(t, v.MaxScroll(), adj.Span())

	v.SetFileSize(2000 * 16)
	assert.Equal(t, int64(2000), v.Adjustment().Upper)
}
