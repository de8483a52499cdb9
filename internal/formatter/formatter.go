// package formatter renders the catalog as tables, trees and export files (CSV, YAML, JSON, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/desertthunder/wereb/internal/catalog"
	"github.com/desertthunder/wereb/internal/models"
	"github.com/desertthunder/wereb/internal/shared"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Formats lists the supported export formats.
var Formats = []Format{FormatCSV, FormatYAML, FormatJSON, FormatText}

// ParseFormat validates a user-supplied format name. "yml" and "txt" are accepted aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "csv":
		return FormatCSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "text", "txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
}

// Duration renders seconds as m:ss, or "-" when unknown.
func Duration(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	return shared.FormatDuration(int(seconds))
}

// Table renders tracks in a rounded table with index, title, category and duration columns.
func Table(tracks []models.Track) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Title", "Category", "Duration"})

	for i, t := range tracks {
		tw.AppendRow(table.Row{i + 1, t.DisplayTitle(), t.Category, Duration(t.Duration)})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, WidthMax: 60},
		{Number: 3, WidthMax: 50},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d tracks", len(tracks)), "", ""})

	return tw.Render()
}

// Tree renders the folder tree. Folders not in expanded are shown collapsed with their track
// count; a nil expanded set shows everything.
func Tree(tree *catalog.Tree, expanded *catalog.FolderSet) string {
	lw := list.NewWriter()
	lw.SetStyle(list.StyleConnectedRounded)

	var walk func(folders []*catalog.Folder)
	walk = func(folders []*catalog.Folder) {
		for _, f := range folders {
			open := expanded == nil || expanded.Contains(f.Path)
			marker := "▸"
			if open {
				marker = "▾"
			}
			lw.AppendItem(fmt.Sprintf("%s %s (%d)", marker, f.Name, f.Count()))

			if !open {
				continue
			}

			lw.Indent()
			walk(f.Children)
			for _, t := range f.Tracks {
				lw.AppendItem(fmt.Sprintf("%s  %s", t.DisplayTitle(), Duration(t.Duration)))
			}
			lw.UnIndent()
		}
	}
	walk(tree.Folders)

	return lw.Render()
}

// ExportToCSV writes tracks with columns id, title, url, category, duration.
func ExportToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"id", "title", "url", "category", "duration"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, t := range tracks {
		record := []string{t.ID, t.Title, t.URL, t.Category, strconv.FormatFloat(t.Duration, 'f', -1, 64)}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToYAML writes tracks as a YAML sequence.
func ExportToYAML(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if tracks == nil {
		tracks = []models.Track{}
	}
	if err := enc.Encode(tracks); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToText writes one "category / title <url>" line per track.
func ExportToText(tracks []models.Track) []byte {
	var buf bytes.Buffer
	for i, t := range tracks {
		category := t.Category
		if category == "" {
			category = catalog.Uncategorized
		}
		fmt.Fprintf(&buf, "%d. %s / %s <%s>\n", i+1, category, t.DisplayTitle(), t.URL)
	}
	return buf.Bytes()
}

// Export encodes tracks in format.
func Export(tracks []models.Track, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(tracks)
	case FormatYAML:
		return ExportToYAML(tracks)
	case FormatJSON:
		if tracks == nil {
			tracks = []models.Track{}
		}
		return shared.MarshalJSON(tracks, true)
	case FormatText:
		return ExportToText(tracks), nil
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
}

// WriteExport encodes tracks in format and writes them to path.
//
// Defaults to wereb_tracks.{format} when path is empty.
func WriteExport(tracks []models.Track, format Format, path string) (string, error) {
	if path == "" {
		ext := string(format)
		if format == FormatText {
			ext = "txt"
		}
		path = "wereb_tracks." + ext
	}

	data, err := Export(tracks, format)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
