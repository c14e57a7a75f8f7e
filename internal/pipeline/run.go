package pipeline

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Process is the single entry point of the pipeline: invoked once after
// the external build step has finished writing root. It plans the work,
// fans it out across a fixed worker pool, and returns the aggregated
// report. Per-file failures are captured in the report; only problems
// that prevent the batch from running at all are returned as an error.
func Process(ctx context.Context, root string, cfg Config, log hclog.Logger, updates chan<- ProgressUpdate) (Report, error) {
	report := NewReport()

	info, err := os.Stat(root)
	if err != nil {
		return report, err
	}
	if !info.IsDir() {
		return report, fmt.Errorf("%s is not a directory", root)
	}

	jobs := make(chan WorkUnit)
	results := make(chan Outcome)

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			worker(ctx, jobs, results, cfg)
		}()
	}

	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for out := range results {
			report.Add(out)
			logOutcome(log, out)
			if updates != nil {
				updates <- progressFor(out)
			}
		}
	}()

	producerErr := make(chan error, 1)
	go func() {
		defer close(jobs)

		send := func(unit WorkUnit) error {
			if updates != nil {
				updates <- ProgressUpdate{TotalDelta: 1}
			}
			select {
			case jobs <- unit:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		skip := func(out Outcome) error {
			if updates != nil {
				updates <- ProgressUpdate{TotalDelta: 1}
			}
			select {
			case results <- out:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		producerErr <- planTree(ctx, root, cfg, log, send, skip)
	}()

	wg.Wait()
	close(results)
	<-collectorDone

	if err := <-producerErr; err != nil {
		return report, err
	}
	return report, nil
}

// worker claims units until the jobs channel closes. In-flight units run
// to completion even after cancellation; atomic writes mean a unit either
// fully lands or leaves no trace.
func worker(ctx context.Context, jobs <-chan WorkUnit, results chan<- Outcome, cfg Config) {
	for unit := range jobs {
		if err := ctx.Err(); err != nil {
			return
		}
		results <- processUnit(unit, cfg)
	}
}

// processUnit runs one unit's read -> compress -> write sequence. Every
// failure is folded into the outcome; nothing escapes to abort siblings.
func processUnit(unit WorkUnit, cfg Config) Outcome {
	out := Outcome{
		Source:       unit.Candidate.Path,
		Target:       unit.Target,
		Backend:      unit.Backend.ID,
		OriginalSize: unit.Candidate.Size,
	}

	if !cfg.Overwrite {
		if _, err := os.Lstat(unit.Target); err == nil {
			out.Status = StatusSkippedExists
			return out
		}
	}

	// Re-read per unit: units for the same file may land on different
	// workers, and isolation is worth the duplicate read.
	data, err := os.ReadFile(unit.Candidate.Path)
	if err != nil {
		out.Status = StatusFailed
		out.Err = fmt.Errorf("read source: %w", err)
		return out
	}
	out.OriginalSize = int64(len(data))

	if cfg.Overwrite {
		// Remove any stale artifact up front so a size-increase skip
		// below cannot leave outdated bytes behind.
		if err := os.Remove(unit.Target); err != nil && !os.IsNotExist(err) {
			out.Status = StatusFailed
			out.Err = fmt.Errorf("remove stale artifact: %w", err)
			return out
		}
	}

	blob, err := unit.Backend.Compress(data, unit.Quality)
	if err != nil {
		out.Status = StatusFailed
		out.Err = fmt.Errorf("compress with %s: %w", unit.Backend.ID, err)
		return out
	}
	if len(blob) >= len(data) {
		out.Status = StatusSkippedLarger
		return out
	}

	if err := writeArtifact(unit.Target, blob, unit.Candidate.Path); err != nil {
		out.Status = StatusFailed
		out.Err = fmt.Errorf("write artifact: %w", err)
		return out
	}

	out.Status = StatusWritten
	out.CompressedSize = int64(len(blob))
	return out
}

func progressFor(out Outcome) ProgressUpdate {
	switch out.Status {
	case StatusWritten:
		return ProgressUpdate{
			WrittenDelta:    1,
			BytesSavedDelta: out.OriginalSize - out.CompressedSize,
		}
	case StatusFailed:
		return ProgressUpdate{FailedDelta: 1}
	default:
		return ProgressUpdate{SkippedDelta: 1}
	}
}

func logOutcome(log hclog.Logger, out Outcome) {
	switch out.Status {
	case StatusWritten:
		log.Debug("wrote artifact", "target", out.Target, "backend", out.Backend,
			"original", out.OriginalSize, "compressed", out.CompressedSize)
	case StatusSkippedExists:
		log.Debug("target exists, skipping", "target", out.Target)
	case StatusSkippedLarger:
		log.Debug("compression grew the file, skipping", "source", out.Source, "backend", out.Backend)
	case StatusFailed:
		log.Error("unit failed", "source", out.Source, "backend", out.Backend, "error", out.Err)
	}
}
