package pipeline

import (
	"precompress/pkg/compressor"
)

// Status classifies the outcome of one work unit.
type Status string

const (
	StatusWritten         Status = "written"
	StatusSkippedExists   Status = "skipped_exists"
	StatusSkippedTooSmall Status = "skipped_too_small"
	StatusSkippedLarger   Status = "skipped_larger"
	StatusFailed          Status = "failed"
)

// Candidate is one source file that passed the derivative and extension
// filters at scan time.
type Candidate struct {
	Path string // absolute
	Rel  string // relative to the walk root, for display
	Size int64
}

// WorkUnit pairs a candidate with one enabled backend. Every unit has a
// distinct target path, so units never contend for the same write.
type WorkUnit struct {
	Candidate Candidate
	Backend   compressor.Backend
	Quality   int
	Target    string
}

// Outcome records how one work unit (or one planner-level skip) ended.
type Outcome struct {
	Source         string
	Target         string
	Backend        compressor.ID
	Status         Status
	Err            error
	OriginalSize   int64
	CompressedSize int64
}

// ProgressUpdate is streamed to the TUI while a run is in flight.
type ProgressUpdate struct {
	TotalDelta      int
	WrittenDelta    int
	SkippedDelta    int
	FailedDelta     int
	BytesSavedDelta int64
}
