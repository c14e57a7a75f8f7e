// Package compressor provides the compression backends used to build
// pre-compressed siblings of static files. Each backend is a stateless
// codec identified by name and output suffix.
package compressor

import "fmt"

// ID identifies a compression backend.
type ID string

const (
	// Gzip is plain gzip at maximum deflate compression.
	Gzip ID = "gzip"
	// Zopfli is the optimized gzip tier: much slower, slightly smaller,
	// bitstream-compatible with gzip. Shares the .gz suffix with Gzip.
	Zopfli ID = "zopfli"
	// Brotli offers the best ratio for text and is widely supported by
	// browsers via Content-Encoding: br.
	Brotli ID = "brotli"
	// Zstd is a general-purpose modern codec. Off by default because
	// browser support for Content-Encoding: zstd is still uneven.
	Zstd ID = "zstd"
)

func (id ID) String() string { return string(id) }

// Backend describes one compression algorithm: its derivative suffix, a
// capability flag resolved once at process start, and its codec functions.
type Backend struct {
	ID             ID
	Suffix         string
	Available      bool
	DefaultQuality int

	compress   func(data []byte, quality int) ([]byte, error)
	decompress func(data []byte) ([]byte, error)
}

// Compress compresses data at the given quality. Quality 0 selects the
// backend default. Output is deterministic for a fixed input and quality.
func (b Backend) Compress(data []byte, quality int) ([]byte, error) {
	if !b.Available {
		return nil, fmt.Errorf("backend %s is not available", b.ID)
	}
	if quality == 0 {
		quality = b.DefaultQuality
	}
	return b.compress(data, quality)
}

// Decompress reverses Compress.
func (b Backend) Decompress(data []byte) ([]byte, error) {
	return b.decompress(data)
}

var backends = []Backend{
	{ID: Gzip, Suffix: ".gz", Available: true, DefaultQuality: 9, compress: compressGzip, decompress: decompressGzip},
	{ID: Zopfli, Suffix: ".gz", Available: true, DefaultQuality: zopfliDefaultIterations, compress: compressZopfli, decompress: decompressGzip},
	{ID: Brotli, Suffix: ".br", Available: true, DefaultQuality: 11, compress: compressBrotli, decompress: decompressBrotli},
	{ID: Zstd, Suffix: ".zst", Available: true, DefaultQuality: 19, compress: compressZstd, decompress: decompressZstd},
}

// All returns every known backend descriptor.
func All() []Backend {
	out := make([]Backend, len(backends))
	copy(out, backends)
	return out
}

// Lookup returns the backend with the given ID.
func Lookup(id ID) (Backend, bool) {
	for _, b := range backends {
		if b.ID == id {
			return b, true
		}
	}
	return Backend{}, false
}

// Suffixes returns the derivative suffixes of every known backend,
// deduplicated. Files ending in one of these are compression outputs and
// must never be treated as sources.
func Suffixes() []string {
	var out []string
	for _, b := range backends {
		seen := false
		for _, s := range out {
			if s == b.Suffix {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, b.Suffix)
		}
	}
	return out
}
