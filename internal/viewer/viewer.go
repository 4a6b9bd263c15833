package viewer

import (
	"log"
	"os"
	"path/filepath"

	"jafhe/internal/buffer"
	"jafhe/internal/config"
	"jafhe/internal/format"
	"jafhe/internal/viewport"
	"jafhe/internal/watch"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

const (
	appName      = "JAFHE"
	maxTitleName = 30

	// title, column header, status line, legend
	chromeRows = 4
	gridTop    = 2
	columnGap  = 2
)

type View int

const (
	ViewMain View = iota
	ViewHelp
	ViewOpen
	ViewFont
	ViewGoto
	ViewFind
)

type Model struct {
	buf     *buffer.Buffer
	watcher *watch.Watcher
	vp      *viewport.Viewport
	fmt     *format.Formatter
	cursor  int64

	view   View
	width  int
	height int
	config *config.Config
	styles *config.Styles

	// where chosen settings are saved; empty disables saving
	configPath string

	// Goto prompt state
	gotoInput string

	// Find prompt state
	findInput   string
	findHex     bool
	findPattern []byte
	findMatches int
	matchAt     int64

	// Font (charset) chooser state
	fontIndex int

	// File browser state
	browserPath  string
	browserItems []os.DirEntry
	browserIndex int

	statusMsg string
	statusErr bool
}

// fileEventMsg carries a change to the open file from its watcher.
type fileEventMsg struct {
	watcher *watch.Watcher
	event   watch.Event
}

type watchErrMsg struct {
	watcher *watch.Watcher
	err     error
}

// NewModel creates a viewer. If filename is empty the file browser is shown.
func NewModel(cfg *config.Config, filename string) (*Model, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cs, err := format.ParseCharset(cfg.Viewer.Charset)
	if err != nil {
		return nil, err
	}

	f := format.New(cfg.Viewer.LineLength, cfg.Viewer.GroupSize, 0, cs)
	f.Uppercase = cfg.Viewer.Uppercase

	m := &Model{
		vp:      viewport.New(cfg.Viewer.LineLength, viewport.Terminal),
		fmt:     f,
		view:    ViewMain,
		config:  cfg,
		styles:  config.NewStyles(&cfg.Theme),
		matchAt: -1,
	}

	if filename == "" {
		m.showBrowser()
		return m, nil
	}
	if err := m.openFile(filename); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle(m.Title()), m.watchCmd())
}

// Title returns the window title for the open file.
func (m *Model) Title() string {
	if m.buf == nil {
		return Title("")
	}
	return Title(m.buf.Filename())
}

// Title builds "JAFHE - name", shortening long names to fit.
func Title(filename string) string {
	if filename == "" {
		return appName
	}
	name := filepath.Base(filename)
	if runewidth.StringWidth(name) > maxTitleName {
		name = runewidth.Truncate(name, maxTitleName, "...")
	}
	return appName + " - " + name
}

// SetConfigPath sets the file that settings picked in the viewer, such as
// the charset, are saved to.
func (m *Model) SetConfigPath(path string) {
	m.configPath = path
}

// Cursor returns the offset of the selected byte.
func (m *Model) Cursor() int64 {
	return m.cursor
}

// Viewport exposes the scroll state.
func (m *Model) Viewport() *viewport.Viewport {
	return m.vp
}

// CurrentView returns the active screen.
func (m *Model) CurrentView() View {
	return m.view
}

// Status returns the current status line message.
func (m *Model) Status() string {
	return m.statusMsg
}

// FileOpen reports whether a file is loaded.
func (m *Model) FileOpen() bool {
	return m.buf != nil
}

func (m *Model) openFile(filename string) error {
	buf, err := buffer.Open(filename)
	if err != nil {
		return err
	}
	m.closeFile()

	m.buf = buf
	m.cursor = 0
	m.clearFind()
	m.syncSize()
	m.vp.Home()

	w, err := watch.New(filename)
	if err != nil {
		log.Printf("watch %s: %v", filename, err)
	} else {
		m.watcher = w
	}

	log.Printf("opened %s (%d bytes)", filename, buf.Size())
	return nil
}

func (m *Model) closeFile() {
	if m.watcher != nil {
		m.watcher.Close()
		m.watcher = nil
	}
	if m.buf != nil {
		log.Printf("closed %s", m.buf.Filename())
		m.buf.Close()
		m.buf = nil
	}
	m.cursor = 0
	m.clearFind()
	m.syncSize()
}

// syncSize pushes the file size into the viewport and the offset column.
func (m *Model) syncSize() {
	var size int64
	if m.buf != nil {
		size = m.buf.Size()
	}
	m.vp.SetFileSize(size)
	m.fmt.OffsetDigits = format.OffsetDigits(size)
	m.clampCursor()
}

func (m *Model) size() int64 {
	if m.buf == nil {
		return 0
	}
	return m.buf.Size()
}

func (m *Model) watchCmd() tea.Cmd {
	w := m.watcher
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			return fileEventMsg{watcher: w, event: ev}
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			return watchErrMsg{watcher: w, err: err}
		}
	}
}

// fileOpened returns the commands to run after the open file changes.
func (m *Model) fileOpened() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle(m.Title()), m.watchCmd())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.Resize(m.gridHeight())
		if m.buf != nil {
			m.vp.EnsureVisible(m.cursor)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case fileEventMsg:
		if msg.watcher != m.watcher {
			return m, nil
		}
		m.handleFileEvent(msg.event)
		return m, m.watchCmd()

	case watchErrMsg:
		if msg.watcher != m.watcher {
			return m, nil
		}
		log.Printf("watch %s: %v", msg.watcher.Path(), msg.err)
		return m, m.watchCmd()
	}

	return m, nil
}

func (m *Model) handleFileEvent(ev watch.Event) {
	if m.buf == nil {
		return
	}
	switch ev.Op {
	case watch.Removed:
		log.Printf("%s removed on disk", ev.Path)
		m.setError("File removed on disk")
	case watch.Changed:
		changed, err := m.buf.HasChangedOnDisk()
		if err != nil {
			log.Printf("check %s: %v", ev.Path, err)
			return
		}
		if !changed {
			return
		}
		if err := m.buf.Reload(); err != nil {
			m.setError("Reload failed: " + err.Error())
			return
		}
		m.syncSize()
		log.Printf("reloaded %s (%d bytes)", ev.Path, m.buf.Size())
		m.statusMsg = "File changed on disk, reloaded"
		m.statusErr = false
	}
}

func (m *Model) gridHeight() int {
	h := m.height - chromeRows
	if h < 0 {
		return 0
	}
	return h
}

func (m *Model) setError(msg string) {
	m.statusMsg = msg
	m.statusErr = true
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Clear status message on any key
	m.statusMsg = ""
	m.statusErr = false

	switch m.view {
	case ViewHelp:
		return m.handleHelpKey(msg)
	case ViewOpen:
		return m.handleOpenKey(msg)
	case ViewFont:
		return m.handleFontKey(msg)
	case ViewGoto:
		return m.handleGotoKey(msg)
	case ViewFind:
		return m.handleFindKey(msg)
	default:
		return m.handleMainKey(msg)
	}
}

func (m *Model) handleMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	lineLen := int64(m.vp.LineLength())

	switch msg.String() {
	case "q", "Q", "ctrl+c":
		m.closeFile()
		return m, tea.Quit
	case "h", "H", "?":
		m.view = ViewHelp
		return m, nil
	case "o", "O":
		m.showBrowser()
		return m, nil
	}

	if m.buf == nil {
		return m, nil
	}

	switch msg.String() {
	// Navigation
	case "up", "k":
		m.moveCursor(-lineLen)
	case "down", "j":
		m.moveCursor(lineLen)
	case "left":
		m.moveCursor(-1)
	case "right":
		m.moveCursor(1)
	case "pgup":
		m.vp.PageUp()
		m.moveCursor(-int64(m.vp.PageSize()) * lineLen)
	case "pgdown", " ":
		m.vp.PageDown()
		m.moveCursor(int64(m.vp.PageSize()) * lineLen)
	case "home":
		m.setCursor(m.cursor / lineLen * lineLen)
	case "end":
		m.setCursor(m.cursor/lineLen*lineLen + lineLen - 1)
	case "ctrl+home":
		m.setCursor(0)
	case "ctrl+end":
		m.setCursor(m.size() - 1)

	// Commands
	case "c", "C":
		m.closeFile()
		return m, tea.SetWindowTitle(m.Title())
	case "g", "G":
		m.view = ViewGoto
		m.gotoInput = ""
	case "/":
		m.view = ViewFind
		m.findInput = ""
	case "n":
		m.findNext(true)
	case "N":
		m.findNext(false)
	case "f", "F":
		m.showFontChooser()
	}

	return m, nil
}

func (m *Model) clampCursor() {
	max := m.size() - 1
	if m.cursor > max {
		m.cursor = max
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) moveCursor(delta int64) {
	m.setCursor(m.cursor + delta)
}

func (m *Model) setCursor(pos int64) {
	m.cursor = pos
	m.clampCursor()
	m.vp.EnsureVisible(m.cursor)
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.view != ViewMain || m.buf == nil {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.vp.ScrollBy(-int64(m.config.Viewer.WheelLines))
		return m, nil
	case tea.MouseButtonWheelDown:
		m.vp.ScrollBy(int64(m.config.Viewer.WheelLines))
		return m, nil
	case tea.MouseButtonLeft:
	default:
		return m, nil
	}
	if msg.Action != tea.MouseActionPress && msg.Action != tea.MouseActionMotion {
		return m, nil
	}

	row := msg.Y - gridTop
	if row < 0 || row >= m.gridHeight() {
		return m, nil
	}

	cols := m.columns()
	if m.config.Viewer.Scrollbar && msg.X == m.scrollbarX(cols) {
		adj := m.vp.Adjustment()
		m.vp.ScrollTo(adj.ValueAt(m.gridHeight(), row))
		return m, nil
	}
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}

	line, ok := m.vp.RowAt(row)
	if !ok {
		return m, nil
	}
	col, cell, ok := cols.ColumnAt(msg.X)
	if !ok {
		return m, nil
	}

	var idx int
	switch col {
	case 1:
		idx, ok = m.fmt.HexByteAt(cell)
	case 2:
		idx, ok = cell, cell < m.fmt.TextWidth()
	default:
		ok = false
	}
	if !ok {
		return m, nil
	}

	off := m.vp.OffsetForLine(line) + int64(idx)
	if off < m.size() {
		m.setCursor(off)
	}
	return m, nil
}

func (m *Model) columns() viewport.Columns {
	return viewport.NewColumns(viewport.Terminal, columnGap,
		m.fmt.OffsetWidth(), m.fmt.HexWidth(), m.fmt.TextWidth())
}

func (m *Model) scrollbarX(cols viewport.Columns) int {
	return cols.Width() + 1
}

func (m *Model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEscape || msg.String() == "h" || msg.String() == "H" || msg.String() == "q" {
		m.view = ViewMain
	}
	return m, nil
}

func (m *Model) showFontChooser() {
	m.view = ViewFont
	m.fontIndex = 0
	for i, cs := range format.Charsets() {
		if cs == m.fmt.Charset {
			m.fontIndex = i
		}
	}
}

func (m *Model) handleFontKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	charsets := format.Charsets()

	switch msg.Type {
	case tea.KeyEscape:
		m.view = ViewMain
	case tea.KeyUp:
		if m.fontIndex > 0 {
			m.fontIndex--
		}
	case tea.KeyDown:
		if m.fontIndex < len(charsets)-1 {
			m.fontIndex++
		}
	case tea.KeyEnter:
		cs := charsets[m.fontIndex]
		m.fmt.Charset = cs
		m.config.Viewer.Charset = cs.Name()
		m.statusMsg = "Charset: " + cs.Label()
		m.view = ViewMain
		if err := m.saveCharset(cs.Name()); err != nil {
			log.Printf("save config: %v", err)
			m.setError("Failed to save config: " + err.Error())
		}
	}
	return m, nil
}

// saveCharset stores the charset in the config file, leaving the file's
// other settings as they are on disk.
func (m *Model) saveCharset(name string) error {
	if m.configPath == "" {
		return nil
	}
	cfg, err := config.LoadFrom(m.configPath)
	if err != nil {
		return err
	}
	cfg.Viewer.Charset = name
	return cfg.SaveTo(m.configPath)
}
