package pipeline

import (
	"precompress/pkg/compressor"
)

// Failure is one failed work unit, with its error flattened to text for
// machine consumption.
type Failure struct {
	Source  string        `json:"source"`
	Target  string        `json:"target,omitempty"`
	Backend compressor.ID `json:"backend,omitempty"`
	Error   string        `json:"error"`
}

// Report is the order-independent aggregation of every outcome in a run.
type Report struct {
	Written         int `json:"written"`
	SkippedExists   int `json:"skipped_exists"`
	SkippedTooSmall int `json:"skipped_too_small"`
	SkippedLarger   int `json:"skipped_larger"`
	Failed          int `json:"failed"`

	WrittenByBackend map[compressor.ID]int `json:"written_by_backend"`

	// Byte totals cover written outcomes only.
	OriginalBytes   int64 `json:"original_bytes"`
	CompressedBytes int64 `json:"compressed_bytes"`
	BytesSaved      int64 `json:"bytes_saved"`

	Failures []Failure `json:"failures,omitempty"`
}

func NewReport() Report {
	return Report{WrittenByBackend: make(map[compressor.ID]int)}
}

// Add folds one outcome into the report. Outcomes may be added in any
// order; the result is a pure multiset aggregation.
func (r *Report) Add(out Outcome) {
	switch out.Status {
	case StatusWritten:
		r.Written++
		r.WrittenByBackend[out.Backend]++
		r.OriginalBytes += out.OriginalSize
		r.CompressedBytes += out.CompressedSize
		r.BytesSaved += out.OriginalSize - out.CompressedSize
	case StatusSkippedExists:
		r.SkippedExists++
	case StatusSkippedTooSmall:
		r.SkippedTooSmall++
	case StatusSkippedLarger:
		r.SkippedLarger++
	case StatusFailed:
		r.Failed++
		failure := Failure{Source: out.Source, Target: out.Target, Backend: out.Backend}
		if out.Err != nil {
			failure.Error = out.Err.Error()
		}
		r.Failures = append(r.Failures, failure)
	}
}

// Skipped is the total count of skipped outcomes of every kind.
func (r Report) Skipped() int {
	return r.SkippedExists + r.SkippedTooSmall + r.SkippedLarger
}

// HasFailures reports whether any unit failed; the CLI exit status
// reflects this without inspecting individual outcomes.
func (r Report) HasFailures() bool {
	return r.Failed > 0
}
