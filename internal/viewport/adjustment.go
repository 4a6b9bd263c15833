package viewport

// Adjustment describes a scrollbar: a value moving over [Lower, Upper-PageSize].
type Adjustment struct {
	Lower         int64
	Upper         int64
	Value         int64
	StepIncrement int64
	PageIncrement int64
	PageSize      int64
}

// Span is the distance the value can travel.
func (a Adjustment) Span() int64 {
	span := a.Upper - a.Lower - a.PageSize
	if span < 0 {
		return 0
	}
	return span
}

// Clamp limits val to the range the adjustment accepts.
func (a Adjustment) Clamp(val int64) int64 {
	if val > a.Lower+a.Span() {
		val = a.Lower + a.Span()
	}
	if val < a.Lower {
		val = a.Lower
	}
	return val
}

// Scrollable reports whether the content is larger than one page.
func (a Adjustment) Scrollable() bool {
	return a.Span() > 0
}

// Thumb returns the position and length of the scrollbar thumb on a track
// of the given number of cells.
func (a Adjustment) Thumb(track int) (pos, length int) {
	if track <= 0 {
		return 0, 0
	}
	total := a.Upper - a.Lower
	if total <= 0 || !a.Scrollable() {
		return 0, track
	}

	length = int((int64(track)*a.PageSize + total/2) / total)
	if length < 1 {
		length = 1
	}
	if length > track {
		length = track
	}

	free := int64(track - length)
	span := a.Span()
	pos = int((free*(a.Clamp(a.Value)-a.Lower) + span/2) / span)
	return pos, length
}

// ValueAt maps a cell on the track back to a value, centring the page on
// the clicked cell.
func (a Adjustment) ValueAt(track, cell int) int64 {
	if track <= 1 || !a.Scrollable() {
		return a.Lower
	}
	if cell < 0 {
		cell = 0
	}
	if cell >= track {
		cell = track - 1
	}
	total := a.Upper - a.Lower
	center := a.Lower + int64(cell)*total/int64(track-1)
	return a.Clamp(center - a.PageSize/2)
}
