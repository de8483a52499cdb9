// Package tasks runs long catalog operations with real-time progress reporting.
//
// # Core Operations
//
//  1. [CatalogEngine.Refresh] : Fetch, probe and snapshot the catalog
//     - Fetches the listing through a [services.Provider]
//     - Probes track durations with a pool of workers (optional)
//     - Saves the result as the new snapshot (optional)
//
//  2. [CatalogEngine.BulkExport] : Write one export file per top-level folder
//     - Groups tracks with [catalog.Group]
//     - Encodes each folder concurrently with [formatter.Export]
//     - Writes a manifest summarizing every file
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, step counters and a message.
// Updates use select with default so a slow reader never stalls the work.
package tasks
