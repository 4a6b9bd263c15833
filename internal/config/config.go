package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"jafhe/internal/format"
)

const (
	maxLineLength = 64
	maxWheelLines = 100
)

type Viewer struct {
	LineLength int    `toml:"line_length"`
	GroupSize  int    `toml:"group_size"`
	Charset    string `toml:"charset"`
	Uppercase  bool   `toml:"uppercase"`
	Scrollbar  bool   `toml:"scrollbar"`
	WheelLines int    `toml:"wheel_lines"`
}

type Theme struct {
	TitleBackground       string `toml:"title_background"`
	TitleForeground       string `toml:"title_foreground"`
	OffsetColor           string `toml:"offset_color"`
	HexColor              string `toml:"hex_color"`
	TextColor             string `toml:"text_color"`
	PlaceholderColor      string `toml:"placeholder_color"`
	CursorBackground      string `toml:"cursor_background"`
	IndexMarkerBackground string `toml:"index_marker_background"`
	MatchBackground       string `toml:"match_background"`
	ScrollbarTrack        string `toml:"scrollbar_track"`
	ScrollbarThumb        string `toml:"scrollbar_thumb"`
	LegendBackground      string `toml:"legend_background"`
	LegendHighlight       string `toml:"legend_highlight"`
	ErrorColor            string `toml:"error_color"`
}

type Config struct {
	Viewer Viewer `toml:"viewer"`
	Theme  Theme  `toml:"theme"`
}

func DefaultConfig() *Config {
	return &Config{
		Viewer: Viewer{
			LineLength: format.DefaultLineLength,
			GroupSize:  format.DefaultGroupSize,
			Charset:    format.ASCII.Name(),
			Uppercase:  true,
			Scrollbar:  true,
			WheelLines: 3,
		},
		Theme: Theme{
			TitleBackground:       "#0000AA",
			TitleForeground:       "#FFFFFF",
			OffsetColor:           "#888888",
			HexColor:              "#DDDDDD",
			TextColor:             "#55FF55",
			PlaceholderColor:      "#555555",
			CursorBackground:      "#0000FF",
			IndexMarkerBackground: "#000080",
			MatchBackground:       "#FFAA00",
			ScrollbarTrack:        "#333333",
			ScrollbarThumb:        "#8888FF",
			LegendBackground:      "#0000FF",
			LegendHighlight:       "#FF0000",
			ErrorColor:            "#FF5555",
		},
	}
}

func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "jafhe.toml"
	}
	return filepath.Join(home, ".config", "jafhe", "jafhe.toml")
}

// LoadFrom reads the config at path. A missing file yields the defaults.
// On a decode or validation error the returned config is still usable.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return DefaultConfig(), errors.Wrapf(err, "decode %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Validate resets out-of-range viewer settings to their defaults and
// reports the first one it found.
func (c *Config) Validate() error {
	def := DefaultConfig().Viewer
	var first error
	fail := func(err error) {
		if first == nil {
			first = err
		}
	}

	if c.Viewer.LineLength < 1 || c.Viewer.LineLength > maxLineLength {
		fail(errors.Errorf("line_length %d out of range 1..%d", c.Viewer.LineLength, maxLineLength))
		c.Viewer.LineLength = def.LineLength
	}
	if c.Viewer.GroupSize < 0 || c.Viewer.GroupSize > c.Viewer.LineLength {
		fail(errors.Errorf("group_size %d out of range 0..%d", c.Viewer.GroupSize, c.Viewer.LineLength))
		c.Viewer.GroupSize = min(def.GroupSize, c.Viewer.LineLength)
	}
	if _, err := format.ParseCharset(c.Viewer.Charset); err != nil {
		fail(err)
		c.Viewer.Charset = def.Charset
	}
	if c.Viewer.WheelLines < 1 || c.Viewer.WheelLines > maxWheelLines {
		fail(errors.Errorf("wheel_lines %d out of range 1..%d", c.Viewer.WheelLines, maxWheelLines))
		c.Viewer.WheelLines = def.WheelLines
	}
	return first
}

// SetLineLength changes the bytes per row, shrinking the group size when
// it no longer fits.
func (c *Config) SetLineLength(n int) error {
	if n < 1 || n > maxLineLength {
		return errors.Errorf("line length %d out of range 1..%d", n, maxLineLength)
	}
	c.Viewer.LineLength = n
	if c.Viewer.GroupSize > n {
		c.Viewer.GroupSize = n
	}
	return c.Validate()
}

func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "create config dir")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create config")
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

type Styles struct {
	Title           lipgloss.Style
	Offset          lipgloss.Style
	Hex             lipgloss.Style
	Text            lipgloss.Style
	Placeholder     lipgloss.Style
	Cursor          lipgloss.Style
	IndexMarker     lipgloss.Style
	Match           lipgloss.Style
	ScrollbarTrack  lipgloss.Style
	ScrollbarThumb  lipgloss.Style
	Legend          lipgloss.Style
	LegendHighlight lipgloss.Style
	Error           lipgloss.Style
	HelpTitle       lipgloss.Style
	HelpKey         lipgloss.Style
	HelpDesc        lipgloss.Style
}

func NewStyles(theme *Theme) *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.TitleBackground)).
			Foreground(lipgloss.Color(theme.TitleForeground)).
			Bold(true),
		Offset: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.OffsetColor)),
		Hex: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.HexColor)),
		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.TextColor)),
		Placeholder: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.PlaceholderColor)),
		Cursor: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.CursorBackground)).
			Foreground(lipgloss.Color("#FFFFFF")),
		IndexMarker: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.IndexMarkerBackground)).
			Foreground(lipgloss.Color("#FFFFFF")),
		Match: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.MatchBackground)).
			Foreground(lipgloss.Color("#000000")),
		ScrollbarTrack: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.ScrollbarTrack)),
		ScrollbarThumb: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.ScrollbarThumb)),
		Legend: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.LegendBackground)).
			Foreground(lipgloss.Color("#FFFFFF")),
		LegendHighlight: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.LegendBackground)).
			Foreground(lipgloss.Color(theme.LegendHighlight)).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.ErrorColor)),
		HelpTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")),
		HelpKey: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.LegendHighlight)).
			Bold(true),
		HelpDesc: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")),
	}
}
