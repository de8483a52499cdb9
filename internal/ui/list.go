package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/wereb/internal/catalog"
	"github.com/desertthunder/wereb/internal/formatter"
	"github.com/desertthunder/wereb/internal/models"
	"github.com/desertthunder/wereb/internal/playback"
	"github.com/desertthunder/wereb/internal/shared"
)

var (
	_ list.Item         = folderItem{}
	_ list.Item         = trackItem{}
	_ list.ItemDelegate = rowDelegate{}
)

// folderItem wraps [catalog.Folder] to implement [list.Item].
type folderItem struct {
	folder *catalog.Folder
	level  int
	open   bool
}

func (i folderItem) FilterValue() string { return i.folder.Path }

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
	level int
}

func (i trackItem) FilterValue() string { return i.track.Title }

// treeItems flattens the visible part of tree into list rows.
// With expandAll every folder is shown open, as while a search term is active.
func treeItems(tree *catalog.Tree, expanded catalog.FolderSet, expandAll bool) []list.Item {
	items := []list.Item{}
	tree.Walk(func(f *catalog.Folder, level int) bool {
		open := expandAll || expanded.Contains(f.Path)
		items = append(items, folderItem{folder: f, level: level, open: open})
		if open {
			for _, t := range f.Tracks {
				items = append(items, trackItem{track: t, level: level + 1})
			}
		}
		return open
	})
	return items
}

// trackItems wraps tracks as flat list rows.
func trackItems(tracks []models.Track) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{track: t}
	}
	return items
}

// rowDelegate renders one compact line per row, marking the playing track.
type rowDelegate struct {
	session *playback.Session
}

func (d rowDelegate) Height() int                             { return 1 }
func (d rowDelegate) Spacing() int                            { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	var line string
	switch i := item.(type) {
	case folderItem:
		marker := "▸"
		if i.open {
			marker = "▾"
		}
		line = fmt.Sprintf("%s%s %s (%d)", indent(i.level), marker, i.folder.Name, i.folder.Count())
	case trackItem:
		mark := "  "
		if cur, ok := d.session.Current(); ok && cur.ID == i.track.ID {
			mark = "♪ "
		}
		line = fmt.Sprintf("%s%s%s  %s", indent(i.level), mark, i.track.DisplayTitle(), formatter.Duration(i.track.Duration))
	default:
		return
	}

	if width := m.Width(); width > 2 {
		line = shared.Truncate(line, width-2)
	}

	switch {
	case index == m.Index():
		line = styles.selected.Render("> " + line)
	case isFolder(item):
		line = "  " + styles.folder.Render(line)
	default:
		line = "  " + line
	}
	fmt.Fprint(w, line)
}

func isFolder(item list.Item) bool {
	_, ok := item.(folderItem)
	return ok
}

func indent(level int) string {
	return strings.Repeat("  ", level)
}

// newList creates a bare list: no title, status bar, help or built-in filtering.
func newList(d list.ItemDelegate) list.Model {
	l := list.New([]list.Item{}, d, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}
