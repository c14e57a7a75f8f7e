package pipeline

import (
	"os"
	"path/filepath"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

var htmlMinifier = func() *minify.M {
	m := minify.New()
	// Stripping attribute quotes tends to make the compressed output
	// larger, so keep them.
	m.Add("text/html", &html.Minifier{KeepQuotes: true})
	return m
}()

// minifyFile minifies an HTML file in place (temp file + rename) and
// returns its resulting size. If minification does not shrink the file,
// the original is left untouched.
func minifyFile(path string, mode os.FileMode) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	minified, err := htmlMinifier.Bytes("text/html", data)
	if err != nil {
		return 0, err
	}
	if len(minified) >= len(data) {
		return int64(len(data)), nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".precompress-*.tmp")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(mode.Perm()); err != nil {
		_ = tmp.Close()
		return 0, err
	}
	if _, err := tmp.Write(minified); err != nil {
		_ = tmp.Close()
		return 0, err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}

	if err := replaceFile(tmp.Name(), path); err != nil {
		return 0, err
	}
	return int64(len(minified)), nil
}
