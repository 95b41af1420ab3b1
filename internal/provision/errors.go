package provision

import "errors"

// The provisioning error taxonomy. Each hard failure wraps exactly one of
// these so callers can classify without string matching.
var (
	// ErrReleaseLookup wraps failures to fetch release metadata.
	ErrReleaseLookup = errors.New("release lookup failed")

	// ErrAssetNotFound is returned when no release asset matches the
	// computed platform asset name.
	ErrAssetNotFound = errors.New("no matching release asset")

	// ErrFilesystem wraps directory creation and file access failures.
	ErrFilesystem = errors.New("filesystem operation failed")

	// ErrDownload wraps archive fetch and extraction failures.
	ErrDownload = errors.New("download failed")

	// ErrPermission is returned when the extracted binary cannot be marked
	// executable.
	ErrPermission = errors.New("cannot mark binary executable")
)
