package viewer

import (
	"os"
	"path/filepath"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
)

const browserRows = 15

func (m *Model) showBrowser() {
	m.view = ViewOpen
	if m.buf != nil {
		m.browserPath = filepath.Dir(m.buf.Filename())
	} else if cwd, err := os.Getwd(); err == nil {
		m.browserPath = cwd
	} else {
		m.browserPath = "/"
	}
	m.browserIndex = 0
	m.loadBrowserItems()
}

func (m *Model) handleOpenKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.view = ViewMain
	case tea.KeyUp:
		if m.browserIndex > 0 {
			m.browserIndex--
		}
	case tea.KeyDown:
		if m.browserIndex < len(m.browserItems)-1 {
			m.browserIndex++
		}
	case tea.KeyBackspace:
		m.enterDir(filepath.Dir(m.browserPath))
	case tea.KeyEnter:
		return m.handleBrowserEnter()
	default:
		if msg.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) handleBrowserEnter() (tea.Model, tea.Cmd) {
	if m.browserIndex >= len(m.browserItems) {
		return m, nil
	}

	item := m.browserItems[m.browserIndex]
	path := filepath.Join(m.browserPath, item.Name())
	if item.IsDir() {
		m.enterDir(path)
		return m, nil
	}

	if err := m.openFile(path); err != nil {
		m.setError("Error: " + err.Error())
		return m, nil
	}
	m.view = ViewMain
	return m, m.fileOpened()
}

func (m *Model) enterDir(path string) {
	m.browserPath = filepath.Clean(path)
	m.browserIndex = 0
	m.loadBrowserItems()
}

func (m *Model) loadBrowserItems() {
	entries, err := os.ReadDir(m.browserPath)
	if err != nil {
		m.browserItems = nil
		m.setError("Error: " + err.Error())
		return
	}

	m.browserItems = make([]os.DirEntry, 0, len(entries)+1)

	// Sort: directories first, then files
	var dirs, files []os.DirEntry
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e)
		} else {
			files = append(files, e)
		}
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name() < dirs[j].Name() })
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

	if m.browserPath != filepath.Dir(m.browserPath) {
		m.browserItems = append(m.browserItems, parentDirEntry{})
	}
	m.browserItems = append(m.browserItems, dirs...)
	m.browserItems = append(m.browserItems, files...)
}

type parentDirEntry struct{}

func (parentDirEntry) Name() string               { return ".." }
func (parentDirEntry) IsDir() bool                { return true }
func (parentDirEntry) Type() os.FileMode          { return os.ModeDir }
func (parentDirEntry) Info() (os.FileInfo, error) { return nil, os.ErrNotExist }
