package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchCatalog Phase = iota
	ProbeDurations
	SaveSnapshot
	ExportFolder
)

func (p Phase) String() string {
	switch p {
	case FetchCatalog:
		return "fetch_catalog"
	case ProbeDurations:
		return "probe_durations"
	case SaveSnapshot:
		return "save_snapshot"
	case ExportFolder:
		return "export_folder"
	default:
		return ""
	}
}

func fetchingCatalogUpdate(source string) ProgressUpdate {
	return ProgressUpdate{Phase: FetchCatalog, Step: 0, Total: 1, Message: fmt.Sprintf("Fetching %s", source)}
}

func fetchedCatalogUpdate(count int) ProgressUpdate {
	return ProgressUpdate{Phase: FetchCatalog, Step: 1, Total: 1, Message: fmt.Sprintf("Found %d tracks", count)}
}

func probeUpdate(step, total int, title string, err error) ProgressUpdate {
	msg := fmt.Sprintf("Probed: %s", title)
	if err != nil {
		msg = fmt.Sprintf("Probe failed: %s (%v)", title, err)
	}
	return ProgressUpdate{Phase: ProbeDurations, Step: step, Total: total, Message: msg}
}

func saveSnapshotUpdate(count int) ProgressUpdate {
	return ProgressUpdate{Phase: SaveSnapshot, Step: 1, Total: 1, Message: fmt.Sprintf("Saved snapshot of %d tracks", count)}
}

func exportCompletedUpdate(step, total int, folder, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportFolder,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Exported %s to %s", folder, path),
	}
}

func exportFailedUpdate(step, total int, folder string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportFolder,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Failed to export %s: %v", folder, err),
		Data:    err,
	}
}
