package pipeline

import (
	"errors"
	"testing"

	"precompress/pkg/compressor"
)

func TestReportAggregation(t *testing.T) {
	r := NewReport()

	r.Add(Outcome{Status: StatusWritten, Backend: compressor.Gzip, OriginalSize: 500, CompressedSize: 200})
	r.Add(Outcome{Status: StatusWritten, Backend: compressor.Brotli, OriginalSize: 500, CompressedSize: 150})
	r.Add(Outcome{Status: StatusSkippedExists})
	r.Add(Outcome{Status: StatusSkippedTooSmall, OriginalSize: 10})
	r.Add(Outcome{Status: StatusSkippedLarger})
	r.Add(Outcome{Status: StatusFailed, Source: "x.html", Backend: compressor.Gzip, Err: errors.New("disk full")})

	if r.Written != 2 || r.SkippedExists != 1 || r.SkippedTooSmall != 1 || r.SkippedLarger != 1 || r.Failed != 1 {
		t.Fatalf("counts wrong: %+v", r)
	}
	if r.Skipped() != 3 {
		t.Errorf("Skipped() = %d, want 3", r.Skipped())
	}
	if r.OriginalBytes != 1000 || r.CompressedBytes != 350 || r.BytesSaved != 650 {
		t.Errorf("byte totals wrong: %+v", r)
	}
	if r.WrittenByBackend[compressor.Gzip] != 1 || r.WrittenByBackend[compressor.Brotli] != 1 {
		t.Errorf("per-backend counts wrong: %v", r.WrittenByBackend)
	}
	if !r.HasFailures() {
		t.Error("HasFailures must be true with a failed outcome")
	}
	if len(r.Failures) != 1 || r.Failures[0].Error != "disk full" || r.Failures[0].Source != "x.html" {
		t.Errorf("failure record wrong: %+v", r.Failures)
	}
}

func TestReportOrderIndependence(t *testing.T) {
	outcomes := []Outcome{
		{Status: StatusWritten, Backend: compressor.Gzip, OriginalSize: 400, CompressedSize: 100},
		{Status: StatusSkippedExists},
		{Status: StatusWritten, Backend: compressor.Gzip, OriginalSize: 300, CompressedSize: 50},
		{Status: StatusFailed, Err: errors.New("boom")},
	}

	forward := NewReport()
	for _, o := range outcomes {
		forward.Add(o)
	}
	backward := NewReport()
	for i := len(outcomes) - 1; i >= 0; i-- {
		backward.Add(outcomes[i])
	}

	if forward.Written != backward.Written || forward.BytesSaved != backward.BytesSaved ||
		forward.Failed != backward.Failed || forward.Skipped() != backward.Skipped() {
		t.Fatalf("aggregation depends on order: %+v vs %+v", forward, backward)
	}
}

func TestReportNoFailures(t *testing.T) {
	r := NewReport()
	r.Add(Outcome{Status: StatusWritten, Backend: compressor.Gzip, OriginalSize: 100, CompressedSize: 40})
	if r.HasFailures() {
		t.Error("HasFailures must be false without failed outcomes")
	}
}
