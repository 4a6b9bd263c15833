package format

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// Placeholder is drawn for bytes without a printable glyph.
const Placeholder = '.'

// Charset maps bytes to the glyphs shown in the text column.
type Charset struct {
	name   string
	label  string
	glyphs [256]rune
}

func (c *Charset) Name() string  { return c.name }
func (c *Charset) Label() string { return c.label }

// Glyph returns the glyph for b.
func (c *Charset) Glyph(b byte) rune {
	return c.glyphs[b]
}

func newCharset(name, label string, decode func(byte) rune) *Charset {
	c := &Charset{name: name, label: label}
	for i := 0; i < 256; i++ {
		r := decode(byte(i))
		if !unicode.IsPrint(r) || runewidth.RuneWidth(r) != 1 {
			r = Placeholder
		}
		c.glyphs[i] = r
	}
	return c
}

func asciiGlyph(b byte) rune {
	if b >= 0x20 && b < 0x7f {
		return rune(b)
	}
	return Placeholder
}

var (
	ASCII       = newCharset("ascii", "ASCII", asciiGlyph)
	Latin1      = newCharset("latin1", "ISO 8859-1", charmap.ISO8859_1.DecodeByte)
	CP437       = newCharset("cp437", "IBM PC (CP437)", charmap.CodePage437.DecodeByte)
	Windows1252 = newCharset("windows-1252", "Windows-1252", charmap.Windows1252.DecodeByte)
	EBCDIC      = newCharset("ebcdic", "EBCDIC (CP037)", charmap.CodePage037.DecodeByte)
)

var charsets = []*Charset{ASCII, Latin1, CP437, Windows1252, EBCDIC}

// Charsets lists the available charsets in display order.
func Charsets() []*Charset {
	out := make([]*Charset, len(charsets))
	copy(out, charsets)
	return out
}

// ParseCharset looks a charset up by name, ignoring case.
func ParseCharset(name string) (*Charset, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ASCII, nil
	}
	for _, c := range charsets {
		if c.name == name {
			return c, nil
		}
	}
	return nil, errors.Errorf("unknown charset %q", name)
}
