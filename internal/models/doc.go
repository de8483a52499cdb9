// Package models defines the catalog entities shared by the fetcher, presenter, server and snapshot store.
//
//   - [Track] : one audio recording discovered on the directory listing
//   - [Snapshot] : a complete fetch result with its provenance
//
// A Track is a value record. Its ID is the standard base64 encoding of its URL, so the
// same URL always yields the same ID and [DecodeID] recovers the URL.
//
// [SnapshotStore] defines the persistence operations for the last fetched catalog.
package models
