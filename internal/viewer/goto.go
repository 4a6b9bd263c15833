package viewer

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
)

// ParseOffset parses a goto target. Accepted forms are decimal, 0x hex,
// 0o octal and 0b binary; a leading + or - makes the value relative to
// cursor.
func ParseOffset(input string, cursor int64) (int64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, errors.New("empty offset")
	}

	sign := int64(0)
	switch s[0] {
	case '+':
		sign = 1
		s = s[1:]
	case '-':
		sign = -1
		s = s[1:]
	}

	base := 10
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 10 {
			s = s[2:]
		}
	}

	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, errors.Errorf("invalid offset %q", strings.TrimSpace(input))
	}
	n, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return 0, errors.Errorf("invalid offset %q", strings.TrimSpace(input))
	}
	switch {
	case sign > 0 && n > math.MaxInt64-cursor:
		// saturate, the caller clamps to the end of the file
		return math.MaxInt64, nil
	case sign != 0:
		return cursor + sign*n, nil
	}
	return n, nil
}

// Goto moves the cursor to the offset described by input and scrolls so
// its row is at the top of the view where possible.
func (m *Model) Goto(input string) error {
	if m.buf == nil {
		return errors.New("no file open")
	}
	off, err := ParseOffset(input, m.cursor)
	if err != nil {
		return err
	}
	return m.gotoOffset(off)
}

func (m *Model) gotoOffset(off int64) error {
	size := m.size()
	if size == 0 {
		return errors.New("file is empty")
	}
	if off < 0 {
		return errors.Errorf("offset %d is before the start of the file", off)
	}

	var clamped bool
	if off >= size {
		off = size - 1
		clamped = true
	}

	m.cursor = off
	m.vp.ScrollTo(m.vp.LineForOffset(off))

	if clamped {
		m.statusMsg = fmt.Sprintf("Past end of file, moved to last byte 0x%X", off)
	}
	return nil
}

func isOffsetChar(s string) bool {
	if len(s) != 1 {
		return false
	}
	c := s[0]
	return isHexChar(s) || c == 'x' || c == 'X' || c == 'o' || c == 'O' || c == '+' || c == '-'
}

func (m *Model) handleGotoKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.view = ViewMain
	case tea.KeyEnter:
		m.view = ViewMain
		if err := m.Goto(m.gotoInput); err != nil {
			m.setError(err.Error())
		}
	case tea.KeyBackspace:
		if len(m.gotoInput) > 0 {
			m.gotoInput = m.gotoInput[:len(m.gotoInput)-1]
		}
	default:
		char := msg.String()
		if isOffsetChar(char) {
			m.gotoInput += char
		}
	}
	return m, nil
}

// FindPattern converts find input to the bytes to search for. Hex input
// ignores spaces and is left-padded to a whole number of bytes.
func FindPattern(input string, hexMode bool) ([]byte, error) {
	if !hexMode {
		return []byte(input), nil
	}
	s := strings.ReplaceAll(input, " ", "")
	if len(s)%2 != 0 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "invalid hex pattern")
	}
	return b, nil
}

func (m *Model) clearFind() {
	m.findPattern = nil
	m.findMatches = 0
	m.matchAt = -1
}

func (m *Model) handleFindKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.view = ViewMain
	case tea.KeyTab:
		m.findHex = !m.findHex
		m.findInput = ""
	case tea.KeyEnter:
		m.view = ViewMain
		pattern, err := FindPattern(m.findInput, m.findHex)
		if err != nil {
			m.setError(err.Error())
			return m, nil
		}
		if len(pattern) == 0 {
			return m, nil
		}
		m.findPattern = pattern
		m.findMatches = m.buf.CountMatches(pattern)
		m.matchAt = -1
		if m.buf.Find(pattern, m.cursor, true) == m.cursor {
			m.showMatch(m.cursor)
			return m, nil
		}
		m.findNext(true)
	case tea.KeyBackspace:
		if len(m.findInput) > 0 {
			m.findInput = m.findInput[:len(m.findInput)-1]
		}
	case tea.KeySpace:
		if !m.findHex {
			m.findInput += " "
		}
	default:
		char := msg.String()
		if msg.Type == tea.KeyRunes && (!m.findHex || isHexChar(char)) {
			m.findInput += char
		}
	}
	return m, nil
}

// findNext jumps to the next or previous match of the last pattern,
// wrapping around the ends of the file.
func (m *Model) findNext(forward bool) {
	if m.buf == nil || len(m.findPattern) == 0 {
		return
	}

	var pos int64
	if forward {
		pos = m.buf.Find(m.findPattern, m.cursor+1, true)
		if pos < 0 {
			pos = m.buf.Find(m.findPattern, 0, true)
		}
	} else {
		pos = m.buf.Find(m.findPattern, m.cursor, false)
		if pos < 0 {
			pos = m.buf.Find(m.findPattern, m.size(), false)
		}
	}

	if pos < 0 {
		m.matchAt = -1
		m.setError("Pattern not found")
		return
	}
	m.showMatch(pos)
}

func (m *Model) showMatch(pos int64) {
	m.matchAt = pos
	m.setCursor(pos)
	m.statusMsg = fmt.Sprintf("Match at 0x%X (%d total)", pos, m.findMatches)
	m.statusErr = false
}

func (m *Model) inMatch(off int64) bool {
	return m.matchAt >= 0 && off >= m.matchAt && off < m.matchAt+int64(len(m.findPattern))
}

func isHexChar(s string) bool {
	if len(s) != 1 {
		return false
	}
	c := s[0]
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
