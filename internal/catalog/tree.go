package catalog

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/desertthunder/wereb/internal/models"
)

// Uncategorized names the bucket for a missing or empty category segment.
const Uncategorized = "Uncategorized"

// Depth is the number of folder levels in a [Tree].
const Depth = 3

// Folder is one node of a [Tree]. Only third-level folders hold tracks.
type Folder struct {
	Name     string
	Path     string
	Children []*Folder
	Tracks   []models.Track

	index map[string]*Folder
}

// Tree groups tracks into three folder levels. Folder order follows first appearance.
type Tree struct {
	Folders []*Folder

	index map[string]*Folder
}

// Group builds the folder tree for tracks. Every track lands in exactly one leaf.
func Group(tracks []models.Track) *Tree {
	tree := &Tree{index: make(map[string]*Folder)}

	for _, t := range tracks {
		segs := Segments(t)

		top := child(&tree.Folders, tree.index, segs[0], "")
		sub := child(&top.Children, top.index, segs[1], top.Path)
		leaf := child(&sub.Children, sub.index, segs[2], sub.Path)
		leaf.Tracks = append(leaf.Tracks, t)
	}
	return tree
}

// Segments returns the three folder names a track is grouped under.
//
// Missing or blank segments become [Uncategorized]; segments past the third are ignored.
func Segments(t models.Track) [Depth]string {
	out := [Depth]string{Uncategorized, Uncategorized, Uncategorized}
	for i, s := range t.Segments() {
		if i >= Depth {
			break
		}
		if s != "" {
			out[i] = s
		}
	}
	return out
}

// FolderPath joins folder names into the key used by [FolderSet].
func FolderPath(names ...string) string {
	return strings.Join(names, "/")
}

func child(list *[]*Folder, index map[string]*Folder, name, parent string) *Folder {
	if f, ok := index[name]; ok {
		return f
	}

	path := name
	if parent != "" {
		path = FolderPath(parent, name)
	}

	f := &Folder{Name: name, Path: path, index: make(map[string]*Folder)}
	index[name] = f
	*list = append(*list, f)
	return f
}

// Count returns the number of tracks under f.
func (f *Folder) Count() int {
	n := len(f.Tracks)
	for _, c := range f.Children {
		n += c.Count()
	}
	return n
}

// Count returns the number of tracks in the tree.
func (t *Tree) Count() int {
	n := 0
	for _, f := range t.Folders {
		n += f.Count()
	}
	return n
}

// Walk visits every folder depth-first, passing its level starting at 0.
// Returning false from fn skips the folder's children.
func (t *Tree) Walk(fn func(f *Folder, level int) bool) {
	var walk func(fs []*Folder, level int)
	walk = func(fs []*Folder, level int) {
		for _, f := range fs {
			if fn(f, level) {
				walk(f.Children, level+1)
			}
		}
	}
	walk(t.Folders, 0)
}

// Leaves returns the tracks in tree order.
func (t *Tree) Leaves() []models.Track {
	out := make([]models.Track, 0, t.Count())
	t.Walk(func(f *Folder, _ int) bool {
		out = append(out, f.Tracks...)
		return true
	})
	return out
}

// MarshalJSON encodes the tree as nested objects keyed by folder name, preserving order.
// Leaves are arrays of tracks.
func (t *Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeFolders(&buf, t.Folders); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFolders(buf *bytes.Buffer, folders []*Folder) error {
	buf.WriteByte('{')
	for i, f := range folders {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(f.Name)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')

		if len(f.Children) == 0 {
			tracks := f.Tracks
			if tracks == nil {
				tracks = []models.Track{}
			}
			val, err := json.Marshal(tracks)
			if err != nil {
				return err
			}
			buf.Write(val)
			continue
		}

		if err := writeFolders(buf, f.Children); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}
