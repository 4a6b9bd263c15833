// Package format renders the offset, hex and text columns of a hex view.
package format

import (
	"io"
	"strings"

	"github.com/pkg/errors"
)

const (
	DefaultLineLength = 16
	DefaultGroupSize  = 4

	minOffsetDigits = 8
)

// Formatter turns byte slices into fixed-width column text.
type Formatter struct {
	LineLength   int
	GroupSize    int
	OffsetDigits int
	Uppercase    bool
	Charset      *Charset
}

// Line is one formatted row.
type Line struct {
	Offset int64
	Bytes  []byte

	OffsetText string
	Hex        string
	Text       string
}

// New returns a formatter sized for a file of the given length.
func New(lineLength, groupSize int, size int64, cs *Charset) *Formatter {
	if lineLength < 1 {
		lineLength = DefaultLineLength
	}
	if groupSize < 0 {
		groupSize = 0
	}
	if cs == nil {
		cs = ASCII
	}
	return &Formatter{
		LineLength:   lineLength,
		GroupSize:    groupSize,
		OffsetDigits: OffsetDigits(size),
		Uppercase:    true,
		Charset:      cs,
	}
}

// OffsetDigits returns how many hex digits the largest offset of a file of
// the given size needs, never fewer than 8.
func OffsetDigits(size int64) int {
	digits := 0
	for n := size - 1; n > 0; n >>= 4 {
		digits++
	}
	if digits < minOffsetDigits {
		return minOffsetDigits
	}
	return digits
}

func (f *Formatter) digits() string {
	if f.Uppercase {
		return "0123456789ABCDEF"
	}
	return "0123456789abcdef"
}

// Offset formats off zero-padded to OffsetDigits.
func (f *Formatter) Offset(off int64) string {
	digits := f.digits()
	buf := make([]byte, f.OffsetWidth())
	u := uint64(off)
	for i := len(buf) - 1; i >= 0; i-- {
		buf[i] = digits[u&0xF]
		u >>= 4
	}
	return string(buf)
}

func (f *Formatter) OffsetWidth() int {
	if f.OffsetDigits < 1 {
		return minOffsetDigits
	}
	return f.OffsetDigits
}

// gapAfter returns the number of spaces written after byte col of a line.
func (f *Formatter) gapAfter(col int) int {
	if col >= f.LineLength-1 {
		return 0
	}
	gap := 1
	if g := f.GroupSize; g > 0 && (col+1)%g == 0 {
		gap++
		if (col+1)%(2*g) == 0 {
			gap++
		}
	}
	return gap
}

// HexWidth returns the width of the hex column in cells.
func (f *Formatter) HexWidth() int {
	w := 0
	for col := 0; col < f.LineLength; col++ {
		w += 2 + f.gapAfter(col)
	}
	return w
}

// TextWidth returns the width of the text column in cells.
func (f *Formatter) TextWidth() int {
	return f.LineLength
}

// HexCell returns the first cell of byte col in the hex column.
func (f *Formatter) HexCell(col int) int {
	x := 0
	for i := 0; i < col && i < f.LineLength; i++ {
		x += 2 + f.gapAfter(i)
	}
	return x
}

// HexByteAt returns the byte of the line drawn at cell of the hex column.
// Cells between bytes report ok=false.
func (f *Formatter) HexByteAt(cell int) (int, bool) {
	if cell < 0 {
		return 0, false
	}
	x := 0
	for col := 0; col < f.LineLength; col++ {
		if cell < x+2 {
			return col, cell >= x
		}
		x += 2 + f.gapAfter(col)
	}
	return 0, false
}

// HexByte formats a single byte.
func (f *Formatter) HexByte(b byte) string {
	digits := f.digits()
	return string([]byte{digits[b>>4], digits[b&0xF]})
}

// Gap returns the spacing written after byte col of the hex column.
func (f *Formatter) Gap(col int) string {
	return strings.Repeat(" ", f.gapAfter(col))
}

// Hex formats up to LineLength bytes, padding a short line with blanks.
func (f *Formatter) Hex(b []byte) string {
	var sb strings.Builder
	sb.Grow(f.HexWidth())
	for col := 0; col < f.LineLength; col++ {
		if col < len(b) {
			sb.WriteString(f.HexByte(b[col]))
		} else {
			sb.WriteString("  ")
		}
		sb.WriteString(f.Gap(col))
	}
	return sb.String()
}

// Text formats up to LineLength bytes through the charset, padding a short
// line with blanks.
func (f *Formatter) Text(b []byte) string {
	var sb strings.Builder
	sb.Grow(f.LineLength)
	for col := 0; col < f.LineLength; col++ {
		if col < len(b) {
			sb.WriteRune(f.Charset.Glyph(b[col]))
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// Line formats one row starting at off.
func (f *Formatter) Line(off int64, b []byte) Line {
	if len(b) > f.LineLength {
		b = b[:f.LineLength]
	}
	return Line{
		Offset:     off,
		Bytes:      b,
		OffsetText: f.Offset(off),
		Hex:        f.Hex(b),
		Text:       f.Text(b),
	}
}

// Lines reads and formats count rows starting at start. Reading stops at
// size; rows past the end of the data are not returned.
func (f *Formatter) Lines(r io.ReaderAt, start int64, count int, size int64) ([]Line, error) {
	if count <= 0 || start >= size || start < 0 {
		return nil, nil
	}
	end := start + int64(count)*int64(f.LineLength)
	if end > size {
		end = size
	}

	buf := make([]byte, end-start)
	n, err := r.ReadAt(buf, start)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrapf(err, "read %d bytes at %#x", len(buf), start)
	}
	buf = buf[:n]

	lines := make([]Line, 0, (n+f.LineLength-1)/f.LineLength)
	for i := 0; i < n; i += f.LineLength {
		j := i + f.LineLength
		if j > n {
			j = n
		}
		lines = append(lines, f.Line(start+int64(i), buf[i:j]))
	}
	return lines, nil
}
