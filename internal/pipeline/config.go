package pipeline

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"precompress/pkg/compressor"
)

// Options is the raw, user-supplied configuration before validation.
type Options struct {
	Gzip    bool
	Zopfli  bool
	Brotli  bool
	Zstd    bool
	Quality map[compressor.ID]int // optional per-backend override, 0 = default

	Overwrite  bool
	MinSize    int64
	Extensions []string // empty = built-in default set; otherwise replaces it
	Minify     bool
	Workers    int // 0 = number of CPUs
}

// Config is the resolved, immutable settings snapshot shared read-only by
// every worker. Build one with Resolve.
type Config struct {
	Enabled    []compressor.Backend
	Quality    map[compressor.ID]int
	Overwrite  bool
	MinSize    int64
	Extensions map[string]bool
	Minify     bool
	MinifyExts map[string]bool
	Workers    int

	// suffixes of every known backend, enabled or not, so stale
	// derivatives from earlier runs are still excluded from candidacy.
	derivativeSuffixes []string
}

// DefaultExtensions is the built-in set of text-like extensions worth
// pre-compressing. Supplying Options.Extensions replaces this set
// entirely; it is never merged.
func DefaultExtensions() []string {
	return []string{
		".atom", ".css", ".htm", ".html", ".ini", ".js", ".json", ".mjs",
		".py", ".rss", ".svg", ".txt", ".webmanifest", ".xml", ".xsl",
	}
}

// DefaultOptions mirrors the documented configuration defaults: gzip on,
// zopfli and brotli on when available, zstd off, no overwriting, 20-byte
// minimum.
func DefaultOptions() Options {
	return Options{
		Gzip:    true,
		Zopfli:  true,
		Brotli:  true,
		Zstd:    false,
		MinSize: 20,
	}
}

// Resolve validates options against the known backends and produces the
// immutable run configuration. Requesting a backend that is not available
// downgrades it silently (with a log line) rather than failing the run;
// genuinely invalid settings are returned as errors before any file is
// touched.
func Resolve(opts Options, backends []compressor.Backend, log hclog.Logger) (Config, error) {
	if opts.MinSize < 0 {
		return Config{}, fmt.Errorf("min size must not be negative, got %d", opts.MinSize)
	}
	if opts.Workers < 0 {
		return Config{}, fmt.Errorf("worker count must not be negative, got %d", opts.Workers)
	}

	byID := make(map[compressor.ID]compressor.Backend, len(backends))
	suffixes := make([]string, 0, len(backends))
	for _, b := range backends {
		byID[b.ID] = b
		found := false
		for _, s := range suffixes {
			if s == b.Suffix {
				found = true
				break
			}
		}
		if !found {
			suffixes = append(suffixes, b.Suffix)
		}
	}

	requested := map[compressor.ID]bool{
		compressor.Gzip:   opts.Gzip,
		compressor.Zopfli: opts.Zopfli,
		compressor.Brotli: opts.Brotli,
		compressor.Zstd:   opts.Zstd,
	}
	for id, on := range requested {
		if !on {
			continue
		}
		b, ok := byID[id]
		if !ok || !b.Available {
			log.Warn("disabling backend: not available", "backend", id)
			requested[id] = false
		}
	}

	// Zopfli and gzip both emit .gz and cannot coexist for one source;
	// the optimized tier wins.
	if requested[compressor.Zopfli] && requested[compressor.Gzip] {
		log.Debug("zopfli enabled; skipping plain gzip for the shared .gz target")
		requested[compressor.Gzip] = false
	}

	var enabled []compressor.Backend
	for _, b := range backends {
		if requested[b.ID] {
			enabled = append(enabled, b)
		}
	}

	cfg := Config{
		Enabled:            enabled,
		Quality:            opts.Quality,
		Overwrite:          opts.Overwrite,
		MinSize:            opts.MinSize,
		Extensions:         resolveExtensions(opts.Extensions, suffixes, log),
		Minify:             opts.Minify,
		MinifyExts:         map[string]bool{".htm": true, ".html": true},
		Workers:            opts.Workers,
		derivativeSuffixes: suffixes,
	}

	if len(cfg.Enabled) == 0 && !cfg.Minify {
		log.Warn("no backends enabled and minification is off; the run will do nothing")
	}
	return cfg, nil
}

// resolveExtensions normalizes the configured extension set: lowercase,
// must start with a period, and derivative suffixes are excluded so a run
// can never compress its own output.
func resolveExtensions(exts []string, derivativeSuffixes []string, log hclog.Logger) map[string]bool {
	if len(exts) == 0 {
		exts = DefaultExtensions()
	}
	out := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			log.Warn("ignoring extension without a leading period", "extension", e)
			continue
		}
		derivative := false
		for _, s := range derivativeSuffixes {
			if e == s {
				derivative = true
				break
			}
		}
		if derivative {
			log.Warn("ignoring compressed-artifact extension", "extension", e)
			continue
		}
		out[e] = true
	}
	return out
}

// quality returns the effective quality setting for a backend.
func (c Config) quality(id compressor.ID) int {
	if c.Quality == nil {
		return 0
	}
	return c.Quality[id]
}
