package snirf

import "errors"

// Loader failure taxonomy. Every failure from Load wraps exactly one of
// these sentinels; match with errors.Is.
var (
	// ErrNotFound means the path does not reference an existing regular file.
	ErrNotFound = errors.New("snirf: file not found")

	// ErrInvalidFormat means the path is not marked as a SNIRF container
	// (wrong extension) or the top-level measurement group is absent.
	ErrInvalidFormat = errors.New("snirf: not a SNIRF file")

	// ErrParse means a required dataset is missing or unreadable inside an
	// otherwise valid container.
	ErrParse = errors.New("snirf: malformed SNIRF content")
)
