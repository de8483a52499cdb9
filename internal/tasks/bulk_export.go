package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/wereb/internal/catalog"
	"github.com/desertthunder/wereb/internal/formatter"
	"github.com/desertthunder/wereb/internal/models"
	"github.com/desertthunder/wereb/internal/shared"
)

// ManifestName is the file written next to the exports by [CatalogEngine.BulkExport].
const ManifestName = "export_manifest.json"

// BulkExportOpts contains configuration for bulk catalog exports.
type BulkExportOpts struct {
	Format    formatter.Format // Export format: csv, yaml, json, text
	OutputDir string           // Base output directory (default: wereb_export_{epoch})
}

// FolderExportResult describes one exported top-level folder.
type FolderExportResult struct {
	Folder  string `json:"folder"`
	Tracks  int    `json:"tracks"`
	File    string `json:"file,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BulkExportResult summarizes a [CatalogEngine.BulkExport].
type BulkExportResult struct {
	Format            formatter.Format     `json:"format"`
	TotalFolders      int                  `json:"total_folders"`
	SuccessfulExports int                  `json:"successful_exports"`
	FailedExports     int                  `json:"failed_exports"`
	OutputDirectory   string               `json:"output_directory"`
	ManifestPath      string               `json:"-"`
	ExportedAt        time.Time            `json:"exported_at"`
	Results           []FolderExportResult `json:"results"`
}

type folderExportJob struct {
	index  int
	folder *catalog.Folder
	file   string
}

// BulkExport writes one file per top-level folder of tracks using a worker pool, then a
// manifest summarizing every file. Results keep folder order.
func (e *CatalogEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	tracks []models.Track,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("wereb_export_%d", time.Now().Unix())
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	folders := catalog.Group(tracks).Folders
	result := &BulkExportResult{
		Format:          opts.Format,
		TotalFolders:    len(folders),
		OutputDirectory: opts.OutputDir,
		ExportedAt:      time.Now().UTC(),
		Results:         make([]FolderExportResult, len(folders)),
	}

	jobs := make(chan folderExportJob, len(folders))
	results := make(chan folderExportJob, len(folders))

	var wg sync.WaitGroup
	for range min(e.workers, max(len(folders), 1)) {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, result, opts)
	}

	names := make([]string, len(folders))
	for i, f := range folders {
		names[i] = f.Name
	}
	files := FileNames(names, opts.Format)

	for i, f := range folders {
		jobs <- folderExportJob{index: i, folder: f, file: files[i]}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for job := range results {
		completed++
		res := result.Results[job.index]
		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(folders), res.Folder, res.File))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(folders), res.Folder, fmt.Errorf("%s", res.Error)))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export interrupted: %w", err)
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestName)
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker is a worker goroutine that exports folders from the jobs channel. Each job
// writes only its own slot of result.Results.
func (e *CatalogEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan folderExportJob,
	results chan<- folderExportJob,
	result *BulkExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		res := FolderExportResult{Folder: job.folder.Name, Tracks: job.folder.Count()}

		if err := ctx.Err(); err != nil {
			res.Error = err.Error()
		} else {
			path := filepath.Join(opts.OutputDir, job.file)
			tracks := (&catalog.Tree{Folders: []*catalog.Folder{job.folder}}).Leaves()
			if _, err := formatter.WriteExport(tracks, opts.Format, path); err != nil {
				res.Error = err.Error()
			} else {
				res.File = path
				res.Success = true
			}
		}

		result.Results[job.index] = res
		results <- job
	}
}

// FileName returns a file name for a folder export: separators and spaces become
// underscores and the extension follows format.
func FileName(folder string, format formatter.Format) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(folder))

	if name == "" || name == "." || name == ".." {
		name = catalog.Uncategorized
	}

	return name + "." + extension(format)
}

// FileNames returns [FileName] for each folder, adding _2, _3 and so on to names already
// taken (compared case-insensitively) or equal to [ManifestName].
func FileNames(folders []string, format formatter.Format) []string {
	ext := "." + extension(format)
	taken := map[string]bool{strings.ToLower(ManifestName): true}

	out := make([]string, len(folders))
	for i, folder := range folders {
		name := FileName(folder, format)
		base := strings.TrimSuffix(name, ext)
		for n := 2; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d%s", base, n, ext)
		}
		taken[strings.ToLower(name)] = true
		out[i] = name
	}
	return out
}

func extension(format formatter.Format) string {
	if format == formatter.FormatText {
		return "txt"
	}
	return string(format)
}
