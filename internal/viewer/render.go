package viewer

import (
	"fmt"
	"log"
	"strings"

	"jafhe/internal/format"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(m.renderTitle())
	b.WriteString("\n")

	switch m.view {
	case ViewHelp:
		b.WriteString(m.renderHelp())
	case ViewOpen:
		b.WriteString(m.renderOpen())
	case ViewFont:
		b.WriteString(m.renderFont())
	default:
		b.WriteString(m.renderMainView())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderLegend())

	return b.String()
}

func (m *Model) renderTitle() string {
	return m.styles.Title.Width(m.width).Render(" " + m.Title())
}

func (m *Model) renderLegend() string {
	var items []string

	hl := func(text string, highlightIdx int) string {
		var result strings.Builder
		for i, ch := range text {
			if i == highlightIdx {
				result.WriteString(m.styles.LegendHighlight.Render(string(ch)))
			} else {
				result.WriteString(m.styles.Legend.Render(string(ch)))
			}
		}
		return result.String()
	}

	items = append(items, hl("Quit", 0))
	items = append(items, hl("Help", 0))

	switch m.view {
	case ViewMain:
		items = append(items, hl("Open", 0))
		if m.buf != nil {
			items = append(items, hl("Close", 0))
			items = append(items, hl("Goto", 0))
			items = append(items, hl("Font", 0))
			items = append(items, hl("/Find", 0))
			if len(m.findPattern) > 0 {
				items = append(items, hl("n/N", 0))
			}
		}
	case ViewGoto, ViewFind, ViewOpen, ViewFont:
		items = append(items, m.styles.LegendHighlight.Render("ESC")+m.styles.Legend.Render(" Back"))
		if m.view == ViewFind {
			items = append(items, m.styles.LegendHighlight.Render("TAB")+m.styles.Legend.Render(" ASCII/Hex"))
		}
	}

	legend := strings.Join(items, m.styles.Legend.Render(" | "))
	return m.styles.Legend.Width(m.width).Render(legend)
}

func (m *Model) renderStatus() string {
	switch m.view {
	case ViewGoto:
		return "Go to offset: " + m.gotoInput + "_  (0x hex, 0o octal, 0b binary, +/- relative)"
	case ViewFind:
		mode := "ASCII"
		if m.findHex {
			mode = "Hex"
		}
		return fmt.Sprintf("Find [%s]: %s_", mode, m.findInput)
	}

	if m.statusMsg != "" {
		if m.statusErr {
			return m.styles.Error.Render(m.statusMsg)
		}
		return m.statusMsg
	}

	if m.buf == nil {
		return ""
	}

	size := m.size()
	percent := int64(0)
	if size > 0 {
		percent = (m.cursor + 1) * 100 / size
	}
	return fmt.Sprintf("Offset: 0x%X (%d)  Size: %s  %d%%  Charset: %s",
		m.cursor, m.cursor, humanize.Bytes(uint64(size)), percent, m.fmt.Charset.Label())
}

func (m *Model) renderMainView() string {
	rows := m.gridHeight()

	if m.buf == nil {
		lines := make([]string, rows+1)
		if len(lines) > 1 {
			lines[1] = "  No file open. Press O to open a file."
		}
		return strings.Join(lines, "\n")
	}

	var b strings.Builder
	b.WriteString(m.renderColumnHeader())
	b.WriteString("\n")
	b.WriteString(m.renderGrid(rows))
	return b.String()
}

func (m *Model) renderColumnHeader() string {
	gap := strings.Repeat(" ", columnGap)
	header := strings.Repeat(" ", m.fmt.OffsetWidth()) + gap

	cursorCol := int(m.cursor % int64(m.fmt.LineLength))
	for i := 0; i < m.fmt.LineLength; i++ {
		label := m.fmt.HexByte(byte(i))
		if i == cursorCol {
			label = m.styles.IndexMarker.Render(label)
		}
		header += label + m.fmt.Gap(i)
	}
	return header
}

func (m *Model) renderGrid(rows int) string {
	lines, err := m.fmt.Lines(m.buf, m.vp.Offset(), m.vp.VisibleLines(), m.size())
	if err != nil {
		log.Printf("read %s: %v", m.buf.Filename(), err)
	}

	var scrollbar []string
	if m.config.Viewer.Scrollbar {
		scrollbar = m.renderScrollbar(rows)
	}

	gap := strings.Repeat(" ", columnGap)
	blank := strings.Repeat(" ", m.columns().Width())
	cursorLine := m.vp.LineForOffset(m.cursor)

	out := make([]string, rows)
	for row := 0; row < rows; row++ {
		var line string
		if row < len(lines) {
			l := lines[row]
			offsetStr := m.styles.Offset.Render(l.OffsetText)
			if m.vp.LineForOffset(l.Offset) == cursorLine {
				offsetStr = m.styles.IndexMarker.Render(l.OffsetText)
			}
			hexStr, textStr := m.renderBytes(l)
			line = offsetStr + gap + hexStr + gap + textStr
		} else {
			line = blank
		}
		if scrollbar != nil {
			line += " " + scrollbar[row]
		}
		out[row] = line
	}
	return strings.Join(out, "\n")
}

// renderBytes styles the hex and text columns of one line byte by byte.
func (m *Model) renderBytes(l format.Line) (string, string) {
	var hexLine, textLine strings.Builder

	for col := 0; col < m.fmt.LineLength; col++ {
		if col >= len(l.Bytes) {
			hexLine.WriteString("  ")
			hexLine.WriteString(m.fmt.Gap(col))
			textLine.WriteString(" ")
			continue
		}

		off := l.Offset + int64(col)
		b := l.Bytes[col]
		glyph := m.fmt.Charset.Glyph(b)

		hexStyle, textStyle := m.styles.Hex, m.styles.Text
		if glyph == format.Placeholder && b != format.Placeholder {
			textStyle = m.styles.Placeholder
		}
		switch {
		case off == m.cursor:
			hexStyle, textStyle = m.styles.Cursor, m.styles.Cursor
		case m.inMatch(off):
			hexStyle, textStyle = m.styles.Match, m.styles.Match
		}

		hexLine.WriteString(hexStyle.Render(m.fmt.HexByte(b)))
		hexLine.WriteString(m.fmt.Gap(col))
		textLine.WriteString(textStyle.Render(string(glyph)))
	}

	return hexLine.String(), textLine.String()
}

func (m *Model) renderScrollbar(rows int) []string {
	pos, length := m.vp.Adjustment().Thumb(rows)

	bar := make([]string, rows)
	for i := range bar {
		if i >= pos && i < pos+length {
			bar[i] = m.styles.ScrollbarThumb.Render("█")
		} else {
			bar[i] = m.styles.ScrollbarTrack.Render("│")
		}
	}
	return bar
}

type helpSection struct {
	title string
	keys  [][2]string
}

var helpSections = []helpSection{
	{"NAVIGATION", [][2]string{
		{"Arrow keys", "Move cursor"},
		{"PgUp/PgDown", "Page up/down (Space pages down)"},
		{"Home/End", "Start/end of line"},
		{"Ctrl+Home/End", "Start/end of file"},
		{"Mouse wheel", "Scroll"},
		{"Click", "Select byte, or jump on the scrollbar"},
	}},
	{"FILE", [][2]string{
		{"O", "Open file"},
		{"C", "Close file"},
	}},
	{"OTHER", [][2]string{
		{"G", "Go to offset"},
		{"/", "Find (TAB toggles ASCII/Hex)"},
		{"n / N", "Next / previous match"},
		{"F", "Font (text column charset)"},
		{"H", "Help (this screen)"},
		{"Q", "Quit"},
	}},
}

func (m *Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.styles.HelpTitle.Render("HELP - JAFHE Hex Viewer"))
	b.WriteString("\n")
	b.WriteString(m.styles.HelpTitle.Render("======================="))
	b.WriteString("\n")

	for _, sec := range helpSections {
		b.WriteString("\n")
		b.WriteString(m.styles.HelpTitle.Render(sec.title))
		b.WriteString("\n")
		for _, k := range sec.keys {
			b.WriteString("  ")
			b.WriteString(m.styles.HelpKey.Render(fmt.Sprintf("%-16s", k[0])))
			b.WriteString(m.styles.HelpDesc.Render(k[1]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\nPress ESC or H to close this help screen.")
	return m.fitBody(b.String())
}

func (m *Model) renderFont() string {
	var b strings.Builder
	b.WriteString("\nFONT\n")
	b.WriteString("====\n\n")

	sample := m.fontSample()
	for i, cs := range format.Charsets() {
		prefix := "  "
		if i == m.fontIndex {
			prefix = "> "
		}
		var glyphs strings.Builder
		for _, c := range sample {
			glyphs.WriteRune(cs.Glyph(c))
		}
		b.WriteString(fmt.Sprintf("%s%-16s %s\n", prefix, cs.Label(), glyphs.String()))
	}

	b.WriteString("\nUse Up/Down to choose, Enter to apply, ESC to cancel")
	return m.fitBody(b.String())
}

// fontSample returns the bytes of the cursor row, or a printable range
// when no file is open.
func (m *Model) fontSample() []byte {
	if m.buf != nil {
		start := m.vp.OffsetForLine(m.vp.LineForOffset(m.cursor))
		if b := m.buf.GetBytes(start, m.fmt.LineLength); len(b) > 0 {
			return b
		}
	}
	sample := make([]byte, 0, 32)
	for c := byte(0xB0); c < 0xD0; c++ {
		sample = append(sample, c)
	}
	return sample
}

func (m *Model) renderOpen() string {
	var b strings.Builder
	b.WriteString("\nOPEN FILE\n")
	b.WriteString("=========\n\n")
	b.WriteString("Path: ")
	b.WriteString(m.browserPath)
	b.WriteString("\n\n")

	startIdx := 0
	if m.browserIndex >= browserRows {
		startIdx = m.browserIndex - browserRows + 1
	}

	for i := startIdx; i < len(m.browserItems) && i < startIdx+browserRows; i++ {
		item := m.browserItems[i]
		prefix := "  "
		if i == m.browserIndex {
			prefix = "> "
		}
		name := item.Name()
		if item.IsDir() {
			name += "/"
		}
		b.WriteString(fmt.Sprintf("%s%s\n", prefix, name))
	}

	b.WriteString("\nEnter opens, Backspace goes up, ESC cancels")
	return m.fitBody(b.String())
}

// fitBody pads or cuts text to exactly the rows between title and status.
func (m *Model) fitBody(text string) string {
	rows := m.height - 3
	if rows < 0 {
		rows = 0
	}
	lines := strings.Split(strings.TrimPrefix(text, "\n"), "\n")
	if len(lines) > rows {
		lines = lines[:rows]
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(strings.Join(lines, "\n"))
}
