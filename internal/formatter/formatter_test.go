package formatter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/desertthunder/wereb/internal/catalog"
	"github.com/desertthunder/wereb/internal/models"
	"github.com/desertthunder/wereb/internal/shared"
	tu "github.com/desertthunder/wereb/internal/testing"
)

func TestParseFormat(t *testing.T) {
	tc := map[string]Format{"csv": FormatCSV, "YAML": FormatYAML, "yml": FormatYAML, "json": FormatJSON, "txt": FormatText}
	for in, want := range tc {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestDuration(t *testing.T) {
	if got := Duration(0); got != "-" {
		t.Errorf("expected -, got %s", got)
	}
	if got := Duration(125.7); got != "2:05" {
		t.Errorf("expected 2:05, got %s", got)
	}
}

func TestTable(t *testing.T) {
	out := Table(tu.SampleTracks())

	for _, want := range []string{"Title", "Category", "Abba Selama", "Meskel/Abba/Kidane", "5 tracks", "╭"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in table:\n%s", want, out)
		}
	}
}

func TestTree(t *testing.T) {
	tree := catalog.Group(tu.SampleTracks())

	t.Run("fully expanded", func(t *testing.T) {
		out := Tree(tree, nil)
		for _, want := range []string{"▾ Meskel (3)", "▾ Kidane (2)", "Abba Selama", "Ketera", "Uncategorized"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in tree:\n%s", want, out)
			}
		}
	})

	t.Run("collapsed folders hide tracks", func(t *testing.T) {
		expanded := catalog.NewFolderSet("Meskel")
		out := Tree(tree, &expanded)

		if !strings.Contains(out, "▾ Meskel (3)") {
			t.Errorf("expected Meskel open:\n%s", out)
		}
		if !strings.Contains(out, "▸ Abba (2)") {
			t.Errorf("expected Abba collapsed:\n%s", out)
		}
		if strings.Contains(out, "Abba Selama") || strings.Contains(out, "Ketera") {
			t.Errorf("collapsed tracks should be hidden:\n%s", out)
		}
	})
}

func TestExporters(t *testing.T) {
	tracks := tu.SampleTracks()
	tracks[0].Duration = 61.5

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(tracks)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("CSV should parse: %v", err)
		}
		if len(records) != len(tracks)+1 {
			t.Fatalf("expected %d records, got %d", len(tracks)+1, len(records))
		}
		if strings.Join(records[0], ",") != "id,title,url,category,duration" {
			t.Errorf("unexpected header %v", records[0])
		}
		if records[1][4] != "61.5" || records[2][4] != "0" {
			t.Errorf("unexpected durations %s %s", records[1][4], records[2][4])
		}
	})

	t.Run("ExportToYAML", func(t *testing.T) {
		data, err := ExportToYAML(tracks)
		if err != nil {
			t.Fatalf("ExportToYAML failed: %v", err)
		}

		var decoded []models.Track
		if err := yaml.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("YAML should parse: %v", err)
		}
		if len(decoded) != len(tracks) || decoded[0] != tracks[0] {
			t.Errorf("unexpected decoded tracks %+v", decoded)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		out := string(ExportToText(tracks))
		if !strings.Contains(out, "1. Meskel/Abba/Kidane / Abba Selama <http://wereb.test/Meskel/Abba/Kidane/1.mp3>") {
			t.Errorf("unexpected text export:\n%s", out)
		}
		if !strings.Contains(out, "5. Uncategorized / Loose Track") {
			t.Errorf("expected uncategorized label:\n%s", out)
		}
	})

	t.Run("Export JSON of nil is an empty array", func(t *testing.T) {
		data, err := Export(nil, FormatJSON)
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}
		if string(data) != "[]" {
			t.Errorf("expected [], got %s", data)
		}
	})

	t.Run("Export JSON", func(t *testing.T) {
		data, err := Export(tracks, FormatJSON)
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}
		var decoded []models.Track
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("JSON should parse: %v", err)
		}
		if decoded[0] != tracks[0] {
			t.Errorf("unexpected first track %+v", decoded[0])
		}
	})

	t.Run("Export unknown format", func(t *testing.T) {
		if _, err := Export(tracks, Format("xml")); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestWriteExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	got, err := WriteExport(tu.SampleTracks(), FormatCSV, path)
	if err != nil {
		t.Fatalf("WriteExport failed: %v", err)
	}
	if got != path {
		t.Errorf("expected %s, got %s", path, got)
	}

	tu.AssertFileExists(t, path)
	if content := tu.MustReadFile(t, path); !strings.HasPrefix(content, "id,title") {
		t.Errorf("unexpected file content %q", content)
	}

	if _, err := WriteExport(nil, FormatJSON, filepath.Join(t.TempDir(), "missing", "out.json")); err == nil {
		t.Error("expected error writing into a missing directory")
	}
}
