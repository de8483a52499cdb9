package catalog

import (
	"encoding/json"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/desertthunder/wereb/internal/models"
	tu "github.com/desertthunder/wereb/internal/testing"
)

func TestGroup(t *testing.T) {
	t.Run("every track lands in exactly one leaf", func(t *testing.T) {
		tracks := tu.SampleTracks()
		tree := Group(tracks)

		if tree.Count() != len(tracks) {
			t.Fatalf("expected %d tracks in tree, got %d", len(tracks), tree.Count())
		}

		seen := map[string]int{}
		for _, tr := range tree.Leaves() {
			seen[tr.ID]++
		}
		for _, tr := range tracks {
			if seen[tr.ID] != 1 {
				t.Errorf("track %s appears %d times", tr.Title, seen[tr.ID])
			}
		}
	})

	t.Run("keeps first appearance order", func(t *testing.T) {
		tree := Group(tu.SampleTracks())

		var names []string
		for _, f := range tree.Folders {
			names = append(names, f.Name)
		}
		if strings.Join(names, ",") != "Meskel,Timket,Uncategorized" {
			t.Errorf("unexpected top-level order %v", names)
		}
	})

	t.Run("missing segments use the sentinel", func(t *testing.T) {
		tree := Group([]models.Track{models.NewTrack("http://x/1.mp3", "One", "Meskel/Tsome")})

		leaf := tree.Folders[0].Children[0].Children[0]
		if leaf.Name != Uncategorized {
			t.Errorf("expected %s leaf, got %s", Uncategorized, leaf.Name)
		}
		if leaf.Path != "Meskel/Tsome/Uncategorized" {
			t.Errorf("unexpected leaf path %s", leaf.Path)
		}
	})

	t.Run("extra segments collapse into the third level", func(t *testing.T) {
		tree := Group([]models.Track{
			models.NewTrack("http://x/1.mp3", "One", "a/b/c/d/e"),
			models.NewTrack("http://x/2.mp3", "Two", "a/b/c"),
		})

		leaf := tree.Folders[0].Children[0].Children[0]
		if leaf.Name != "c" || len(leaf.Tracks) != 2 {
			t.Errorf("expected both tracks under c, got %s with %d", leaf.Name, len(leaf.Tracks))
		}
	})

	t.Run("blank segments and whitespace", func(t *testing.T) {
		segs := Segments(models.Track{Category: " a //  c "})
		if segs != [Depth]string{"a", Uncategorized, "c"} {
			t.Errorf("unexpected segments %v", segs)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		tree := Group(nil)
		if tree.Count() != 0 || len(tree.Folders) != 0 {
			t.Error("expected empty tree")
		}
	})

	t.Run("Walk can skip children", func(t *testing.T) {
		tree := Group(tu.SampleTracks())
		visited := 0
		tree.Walk(func(_ *Folder, level int) bool {
			visited++
			return level < 0
		})
		if visited != len(tree.Folders) {
			t.Errorf("expected only top-level folders visited, got %d", visited)
		}
	})

	t.Run("MarshalJSON nests objects in order", func(t *testing.T) {
		tree := Group([]models.Track{
			models.NewTrack("http://x/1.mp3", "One", "z/y/x"),
			models.NewTrack("http://x/2.mp3", "Two", "a/b/c"),
		})

		data, err := json.Marshal(tree)
		if err != nil {
			t.Fatalf("marshal error: %v", err)
		}

		if !strings.HasPrefix(string(data), `{"z":{"y":{"x":[{"id":`) {
			t.Errorf("unexpected json %s", data)
		}
		if strings.Index(string(data), `"z"`) > strings.Index(string(data), `"a"`) {
			t.Errorf("expected z before a, got %s", data)
		}

		var decoded map[string]map[string]map[string][]models.Track
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("tree json should be valid: %v", err)
		}
		if decoded["a"]["b"]["c"][0].Title != "Two" {
			t.Errorf("unexpected decoded tree %+v", decoded)
		}
	})

	t.Run("MarshalJSON of empty tree", func(t *testing.T) {
		data, err := json.Marshal(Group(nil))
		if err != nil {
			t.Fatalf("marshal error: %v", err)
		}
		if string(data) != "{}" {
			t.Errorf("expected {}, got %s", data)
		}
	})
}

func TestFilter(t *testing.T) {
	tracks := tu.SampleTracks()

	t.Run("empty term returns input unchanged", func(t *testing.T) {
		got := Filter(tracks, "")
		if len(got) != len(tracks) {
			t.Fatalf("expected %d tracks, got %d", len(tracks), len(got))
		}
		for i := range got {
			if got[i] != tracks[i] {
				t.Errorf("track %d changed", i)
			}
		}
	})

	t.Run("case insensitive on title", func(t *testing.T) {
		got := Filter(tracks, "SELAMA")
		if len(got) != 1 || got[0].Title != "Abba Selama" {
			t.Errorf("expected Abba Selama, got %+v", got)
		}
	})

	t.Run("lowercase prefix finds Abba", func(t *testing.T) {
		got := Filter(tracks, "abb")
		if len(got) != 2 || got[0].Title != "Abba Selama" {
			t.Errorf("expected both tracks under Abba, got %+v", got)
		}
	})

	t.Run("matches category", func(t *testing.T) {
		got := Filter(tracks, "MESKEL")
		if len(got) != 3 {
			t.Errorf("expected 3 Meskel tracks, got %d", len(got))
		}
	})

	t.Run("stable order", func(t *testing.T) {
		got := Filter(tracks, "e")
		last := -1
		for _, tr := range got {
			idx := IndexOf(tracks, tr.ID)
			if idx <= last {
				t.Errorf("order not preserved at %s", tr.Title)
			}
			last = idx
		}
	})

	t.Run("no match", func(t *testing.T) {
		if got := Filter(tracks, "zzz"); len(got) != 0 {
			t.Errorf("expected no tracks, got %d", len(got))
		}
	})

	t.Run("ethiopic text", func(t *testing.T) {
		list := []models.Track{models.NewTrack("http://x/1.mp3", "ወረብ ዘመስቀል", "")}
		if got := Filter(list, "መስቀል"); len(got) != 1 {
			t.Errorf("expected match on ethiopic substring, got %d", len(got))
		}
	})
}

func TestSample(t *testing.T) {
	tracks := tu.SampleTracks()

	t.Run("returns at most n distinct tracks from the input", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(1, 2))
		for range 50 {
			got := Sample(tracks, FeaturedCount, rng)
			if len(got) != min(FeaturedCount, len(tracks)) {
				t.Fatalf("expected %d tracks, got %d", min(FeaturedCount, len(tracks)), len(got))
			}

			seen := map[string]bool{}
			for _, tr := range got {
				if seen[tr.ID] {
					t.Errorf("duplicate track %s", tr.Title)
				}
				seen[tr.ID] = true
				if IndexOf(tracks, tr.ID) < 0 {
					t.Errorf("track %s not in input", tr.Title)
				}
			}
		}
	})

	t.Run("smaller n", func(t *testing.T) {
		if got := Sample(tracks, 2, nil); len(got) != 2 {
			t.Errorf("expected 2 tracks, got %d", len(got))
		}
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		before := append([]models.Track(nil), tracks...)
		Sample(tracks, 3, rand.New(rand.NewPCG(3, 4)))
		for i := range tracks {
			if tracks[i] != before[i] {
				t.Fatalf("input reordered at %d", i)
			}
		}
	})

	t.Run("empty and non-positive", func(t *testing.T) {
		if got := Sample(nil, 6, nil); len(got) != 0 {
			t.Errorf("expected empty sample, got %d", len(got))
		}
		if got := Sample(tracks, 0, nil); len(got) != 0 {
			t.Errorf("expected empty sample, got %d", len(got))
		}
	})

	t.Run("covers every track over many draws", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(5, 6))
		seen := map[string]bool{}
		for range 200 {
			for _, tr := range Sample(tracks, 1, rng) {
				seen[tr.ID] = true
			}
		}
		if len(seen) != len(tracks) {
			t.Errorf("expected all %d tracks sampled, got %d", len(tracks), len(seen))
		}
	})
}

func TestFolderSet(t *testing.T) {
	t.Run("Toggle returns a new set", func(t *testing.T) {
		empty := NewFolderSet()
		opened := empty.Toggle("Meskel")

		if empty.Contains("Meskel") {
			t.Error("original set should be unchanged")
		}
		if !opened.Contains("Meskel") {
			t.Error("toggled set should contain Meskel")
		}

		closed := opened.Toggle("Meskel")
		if closed.Contains("Meskel") || !opened.Contains("Meskel") {
			t.Error("toggling twice should remove only from the new set")
		}
	})

	t.Run("nested paths are independent", func(t *testing.T) {
		s := NewFolderSet().Toggle("Meskel").Toggle(FolderPath("Meskel", "Abba"))
		if s.Len() != 2 {
			t.Errorf("expected 2 paths, got %d", s.Len())
		}

		s = s.Toggle("Meskel")
		if !s.Contains("Meskel/Abba") {
			t.Error("collapsing the parent should keep the child path")
		}
	})

	t.Run("Paths sorted", func(t *testing.T) {
		s := NewFolderSet("b", "a", "c")
		if got := strings.Join(s.Paths(), ","); got != "a,b,c" {
			t.Errorf("expected a,b,c, got %s", got)
		}
	})

	t.Run("zero value is usable", func(t *testing.T) {
		var s FolderSet
		if s.Contains("x") {
			t.Error("zero set should be empty")
		}
		if !s.Toggle("x").Contains("x") {
			t.Error("toggle on zero set should add")
		}
	})
}

func TestFind(t *testing.T) {
	tracks := tu.SampleTracks()

	if tr, ok := Find(tracks, tracks[2].ID); !ok || tr.Title != tracks[2].Title {
		t.Errorf("expected to find %s", tracks[2].Title)
	}
	if _, ok := Find(tracks, "missing"); ok {
		t.Error("expected missing id not to be found")
	}
}
