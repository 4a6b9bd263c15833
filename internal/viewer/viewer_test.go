package viewer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jafhe/internal/config"
	"jafhe/internal/format"
	"jafhe/internal/watch"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestModel opens a 1 KiB file with "hello" at 100 and 500 in a
// 100x14 window, leaving a 10 row grid.
func newTestModel(t *testing.T) (*Model, string) {
	t.Helper()

	data := make([]byte, 1024)
	copy(data[100:], "hello")
	copy(data[500:], "hello")

	path := filepath.Join(t.TempDir(), "test.bin")
	require.NoError(t, os.WriteFile(path, data, 0644))

	m, err := NewModel(config.DefaultConfig(), path)
	require.NoError(t, err)
	t.Cleanup(m.closeFile)

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 14})
	return m, path
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "JAFHE", Title(""))
	assert.Equal(t, "JAFHE - foo.bin", Title("/tmp/some/dir/foo.bin"))

	long := strings.Repeat("x", 60) + ".bin"
	title := Title(long)
	name := strings.TrimPrefix(title, "JAFHE - ")
	assert.LessOrEqual(t, runewidth.StringWidth(name), maxTitleName)
	assert.True(t, strings.HasSuffix(name, "..."))
}

func TestNewModelWithoutFile(t *testing.T) {
	m, err := NewModel(nil, "")
	require.NoError(t, err)

	assert.False(t, m.FileOpen())
	assert.Equal(t, ViewOpen, m.CurrentView())
	assert.Equal(t, "JAFHE", m.Title())
}

func TestNewModelMissingFile(t *testing.T) {
	_, err := NewModel(nil, filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestNewModelBadCharset(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Viewer.Charset = "klingon"
	_, err := NewModel(cfg, "")
	assert.Error(t, err)
}

func TestWindowSize(t *testing.T) {
	m, _ := newTestModel(t)

	vp := m.Viewport()
	assert.Equal(t, 10, vp.Height())
	assert.Equal(t, int64(64), vp.TotalLines())
	assert.Equal(t, 10, vp.PageSize())
	assert.Equal(t, int64(54), vp.MaxScroll())
}

func TestCursorNavigation(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(key(tea.KeyDown))
	assert.Equal(t, int64(16), m.Cursor())

	m.Update(key(tea.KeyRight))
	assert.Equal(t, int64(17), m.Cursor())

	m.Update(key(tea.KeyHome))
	assert.Equal(t, int64(16), m.Cursor())

	m.Update(key(tea.KeyEnd))
	assert.Equal(t, int64(31), m.Cursor())

	m.Update(key(tea.KeyUp))
	m.Update(key(tea.KeyUp))
	assert.Equal(t, int64(0), m.Cursor(), "cursor clamps at the start")

	m.Update(key(tea.KeyLeft))
	assert.Equal(t, int64(0), m.Cursor())

	m.Update(key(tea.KeyCtrlEnd))
	assert.Equal(t, int64(1023), m.Cursor())
	assert.Equal(t, int64(54), m.Viewport().Scroll())

	m.Update(key(tea.KeyRight))
	assert.Equal(t, int64(1023), m.Cursor(), "cursor clamps at the end")

	m.Update(key(tea.KeyCtrlHome))
	assert.Equal(t, int64(0), m.Cursor())
	assert.Equal(t, int64(0), m.Viewport().Scroll())
}

func TestCursorScrollsIntoView(t *testing.T) {
	m, _ := newTestModel(t)

	for i := 0; i < 10; i++ {
		m.Update(runes("j"))
	}
	assert.Equal(t, int64(160), m.Cursor())
	assert.Equal(t, int64(1), m.Viewport().Scroll())

	for i := 0; i < 10; i++ {
		m.Update(runes("k"))
	}
	assert.Equal(t, int64(0), m.Viewport().Scroll())
}

func TestPaging(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(key(tea.KeyPgDown))
	assert.Equal(t, int64(10), m.Viewport().Scroll())
	assert.Equal(t, int64(160), m.Cursor())

	m.Update(key(tea.KeySpace))
	assert.Equal(t, int64(20), m.Viewport().Scroll())

	m.Update(key(tea.KeyPgUp))
	assert.Equal(t, int64(10), m.Viewport().Scroll())
	assert.Equal(t, int64(160), m.Cursor())

	for i := 0; i < 10; i++ {
		m.Update(key(tea.KeyPgDown))
	}
	assert.Equal(t, int64(54), m.Viewport().Scroll())
	assert.Equal(t, int64(1023), m.Cursor())
}

func TestResizeKeepsCursorVisible(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(key(tea.KeyCtrlEnd))
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 8})

	vp := m.Viewport()
	assert.Equal(t, 4, vp.PageSize())
	assert.Equal(t, int64(60), vp.Scroll())

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 200})
	assert.Equal(t, int64(0), vp.Scroll(), "whole file fits")
}

func TestMouseWheel(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	assert.Equal(t, int64(3), m.Viewport().Scroll())

	m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	assert.Equal(t, int64(0), m.Viewport().Scroll())
	assert.Equal(t, int64(0), m.Cursor(), "wheel does not move the cursor")
}

func TestMouseClick(t *testing.T) {
	m, _ := newTestModel(t)

	hexX := m.columns().X(1)
	textX := m.columns().X(2)
	require.Equal(t, 10, hexX)
	require.Equal(t, 63, textX)

	// second byte of the first row
	m.Update(tea.MouseMsg{X: hexX + 3, Y: gridTop, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.Equal(t, int64(1), m.Cursor())

	// gap between bytes
	m.Update(tea.MouseMsg{X: hexX + 2, Y: gridTop, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.Equal(t, int64(1), m.Cursor())

	m.Update(tea.MouseMsg{X: textX + 5, Y: gridTop + 1, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.Equal(t, int64(21), m.Cursor())

	// offset column
	m.Update(tea.MouseMsg{X: 2, Y: gridTop, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.Equal(t, int64(21), m.Cursor())
}

func TestMouseScrollbar(t *testing.T) {
	m, _ := newTestModel(t)

	x := m.scrollbarX(m.columns())
	m.Update(tea.MouseMsg{X: x, Y: gridTop + 9, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.Equal(t, int64(54), m.Viewport().Scroll())

	m.Update(tea.MouseMsg{X: x, Y: gridTop, Button: tea.MouseButtonLeft, Action: tea.MouseActionMotion})
	assert.Equal(t, int64(0), m.Viewport().Scroll())
}

func TestFontChooser(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(runes("f"))
	require.Equal(t, ViewFont, m.CurrentView())

	m.Update(key(tea.KeyDown))
	m.Update(key(tea.KeyEnter))

	assert.Equal(t, ViewMain, m.CurrentView())
	assert.Equal(t, format.Latin1, m.fmt.Charset)
	assert.Equal(t, format.Latin1.Name(), m.config.Viewer.Charset)

	m.Update(runes("f"))
	m.Update(key(tea.KeyUp))
	m.Update(key(tea.KeyEscape))
	assert.Equal(t, format.Latin1, m.fmt.Charset, "escape keeps the charset")
}

func TestFontChoiceSaved(t *testing.T) {
	m, path := newTestModel(t)

	cfgPath := filepath.Join(t.TempDir(), "jafhe.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[viewer]\nline_length = 8\n"), 0644))
	m.SetConfigPath(cfgPath)

	m.Update(runes("f"))
	m.Update(key(tea.KeyDown))
	m.Update(key(tea.KeyEnter))
	assert.Equal(t, "Charset: "+format.Latin1.Label(), m.Status())

	loaded, err := config.LoadFrom(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, format.Latin1.Name(), loaded.Viewer.Charset)
	assert.Equal(t, 8, loaded.Viewer.LineLength, "other settings in the file are kept")

	reopened, err := NewModel(loaded, path)
	require.NoError(t, err)
	defer reopened.closeFile()
	assert.Equal(t, format.Latin1, reopened.fmt.Charset)
}

func TestFontChoiceSaveError(t *testing.T) {
	m, _ := newTestModel(t)

	cfgPath := filepath.Join(t.TempDir(), "jafhe.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[viewer\n"), 0644))
	m.SetConfigPath(cfgPath)

	m.Update(runes("f"))
	m.Update(key(tea.KeyDown))
	m.Update(key(tea.KeyEnter))

	assert.Contains(t, m.Status(), "Failed to save config")
	assert.Equal(t, format.Latin1, m.fmt.Charset, "choice still applies to the view")

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "[viewer\n", string(data), "a broken file is not overwritten")
}

func TestHelpView(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(runes("?"))
	assert.Equal(t, ViewHelp, m.CurrentView())
	out := m.View()
	assert.Contains(t, out, "HELP")
	assert.Contains(t, out, "Go to offset")

	m.Update(key(tea.KeyEscape))
	assert.Equal(t, ViewMain, m.CurrentView())
}

func TestCloseFile(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(key(tea.KeyDown))
	_, cmd := m.Update(runes("c"))
	assert.NotNil(t, cmd)
	assert.False(t, m.FileOpen())
	assert.Equal(t, "JAFHE", m.Title())
	assert.Equal(t, int64(0), m.Viewport().TotalLines())

	m.Update(key(tea.KeyDown))
	assert.Equal(t, int64(0), m.Cursor(), "navigation is ignored without a file")
	assert.Contains(t, m.View(), "No file open")
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestFileChangedReload(t *testing.T) {
	m, path := newTestModel(t)

	m.Update(key(tea.KeyCtrlEnd))
	require.NoError(t, os.WriteFile(path, make([]byte, 2048), 0644))

	m.Update(fileEventMsg{watcher: m.watcher, event: watch.Event{Path: path, Op: watch.Changed}})

	assert.Equal(t, int64(2048), m.Viewport().FileSize())
	assert.Equal(t, int64(128), m.Viewport().TotalLines())
	assert.Equal(t, "File changed on disk, reloaded", m.Status())

	require.NoError(t, os.WriteFile(path, make([]byte, 32), 0644))
	m.Update(fileEventMsg{watcher: m.watcher, event: watch.Event{Path: path, Op: watch.Changed}})

	assert.Equal(t, int64(31), m.Cursor(), "cursor clamps to the new end")
	assert.Equal(t, int64(0), m.Viewport().Scroll())
}

func TestFileEventFromStaleWatcher(t *testing.T) {
	m, path := newTestModel(t)

	require.NoError(t, os.WriteFile(path, make([]byte, 2048), 0644))
	m.Update(fileEventMsg{watcher: &watch.Watcher{}, event: watch.Event{Path: path, Op: watch.Changed}})

	assert.Equal(t, int64(1024), m.Viewport().FileSize())
}

func TestFileRemoved(t *testing.T) {
	m, path := newTestModel(t)

	m.Update(fileEventMsg{watcher: m.watcher, event: watch.Event{Path: path, Op: watch.Removed}})
	assert.Equal(t, "File removed on disk", m.Status())
	assert.True(t, m.FileOpen())
}

func TestViewRendersGrid(t *testing.T) {
	m, _ := newTestModel(t)

	out := m.View()
	assert.Contains(t, out, "JAFHE - test.bin")
	assert.Contains(t, out, "00000060")
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "Offset: 0x0 (0)")

	fresh, err := NewModel(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "Loading...", fresh.View())
}
