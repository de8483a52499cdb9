package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrUnknownSource = fmt.Errorf("unknown track provider")

	// Catalog fetch errors. Every fetch failure also wraps [ErrFetchTracks].
	ErrFetchTracks = fmt.Errorf("failed to fetch tracks")
	ErrTransport   = fmt.Errorf("transport error")
	ErrParse       = fmt.Errorf("parse error")

	// Storage errors
	ErrNoSnapshot = fmt.Errorf("no cached catalog")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrTrackNotFound   = fmt.Errorf("track not found")
)
