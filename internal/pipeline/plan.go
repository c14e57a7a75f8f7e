package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"precompress/pkg/compressor"
)

// isCompressible reports whether the file's extension is in the
// configured set. Pure string work, no I/O.
func isCompressible(path string, extensions map[string]bool) bool {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// isDerivative reports whether the path is itself a compression output
// (ends in a known derivative suffix). Derivatives are never candidates,
// regardless of what the configured extension set says.
func isDerivative(path string, suffixes []string) bool {
	lower := strings.ToLower(path)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// meetsMinimum reports whether a file is large enough to be worth
// compressing. A zero minimum admits everything.
func meetsMinimum(size, minSize int64) bool {
	return minSize <= 0 || size >= minSize
}

// planTree walks the tree rooted at root exactly once and streams plan
// decisions: one WorkUnit per (surviving file, enabled backend) via
// emitUnit, and planner-level outcomes (too-small skips, unreadable
// entries) via emitOutcome. A file failing the size gate excludes only
// that file; the walk always continues. Emit callbacks return an error
// only to abort the walk (cancellation).
func planTree(ctx context.Context, root string, cfg Config, log hclog.Logger, emitUnit func(WorkUnit) error, emitOutcome func(Outcome) error) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	fsys := os.DirFS(absRoot)
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == "." {
				return walkErr
			}
			// One unreadable entry must not end the batch.
			return emitOutcome(Outcome{
				Source: filepath.Join(absRoot, path),
				Status: StatusFailed,
				Err:    fmt.Errorf("walk: %w", walkErr),
			})
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		full := filepath.Join(absRoot, path)
		if isDerivative(full, cfg.derivativeSuffixes) {
			return nil
		}
		if !isCompressible(full, cfg.Extensions) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return emitOutcome(Outcome{
				Source: full,
				Status: StatusFailed,
				Err:    fmt.Errorf("stat: %w", err),
			})
		}
		size := info.Size()

		if cfg.Minify && cfg.MinifyExts[strings.ToLower(filepath.Ext(full))] {
			minified, err := minifyFile(full, info.Mode())
			if err != nil {
				// Compression still runs over the original bytes.
				log.Warn("minification failed; leaving file as is", "path", path, "error", err)
			} else {
				size = minified
			}
		}

		if !meetsMinimum(size, cfg.MinSize) {
			log.Debug("below minimum size, skipping", "path", path, "size", size)
			return emitOutcome(Outcome{
				Source:       full,
				Status:       StatusSkippedTooSmall,
				OriginalSize: size,
			})
		}

		candidate := Candidate{Path: full, Rel: path, Size: size}
		for _, backend := range cfg.Enabled {
			unit := WorkUnit{
				Candidate: candidate,
				Backend:   backend,
				Quality:   cfg.quality(backend.ID),
				Target:    full + backend.Suffix,
			}
			if err := emitUnit(unit); err != nil {
				return err
			}
		}
		return nil
	})
}

// PlannedAction is one backend's pending action for a scanned file.
type PlannedAction struct {
	Backend compressor.ID
	Target  string
	Status  Status // StatusWritten if the run would write, StatusSkippedExists otherwise
}

// PlannedFile is the dry-run view of one candidate file.
type PlannedFile struct {
	Rel     string
	Size    int64
	Status  Status // empty unless the planner skipped the whole file
	Actions []PlannedAction
}

// Scan performs the planning phase only: it reports what a run with the
// same configuration would do, without writing or modifying anything.
// In-place minification is suppressed, so sizes reflect the files as they
// are on disk.
func Scan(ctx context.Context, root string, cfg Config, log hclog.Logger) ([]PlannedFile, error) {
	cfg.Minify = false

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var planned []PlannedFile
	byPath := map[string]int{}

	err = planTree(ctx, root, cfg, log,
		func(unit WorkUnit) error {
			idx, ok := byPath[unit.Candidate.Path]
			if !ok {
				planned = append(planned, PlannedFile{Rel: unit.Candidate.Rel, Size: unit.Candidate.Size})
				idx = len(planned) - 1
				byPath[unit.Candidate.Path] = idx
			}
			status := StatusWritten
			if !cfg.Overwrite {
				if _, err := os.Lstat(unit.Target); err == nil {
					status = StatusSkippedExists
				}
			}
			planned[idx].Actions = append(planned[idx].Actions, PlannedAction{
				Backend: unit.Backend.ID,
				Target:  unit.Target,
				Status:  status,
			})
			return nil
		},
		func(out Outcome) error {
			rel, err := filepath.Rel(absRoot, out.Source)
			if err != nil {
				rel = out.Source
			}
			planned = append(planned, PlannedFile{Rel: rel, Size: out.OriginalSize, Status: out.Status})
			return nil
		},
	)
	return planned, err
}
