package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"precompress/pkg/compressor"
)

func TestWriteArtifactPreservesSourceMetadata(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "page.html")
	target := source + ".gz"

	writeTestFile(t, source, htmlBody)
	if err := os.Chmod(source, 0o640); err != nil {
		t.Fatal(err)
	}
	mtime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(source, mtime, mtime); err != nil {
		t.Fatal(err)
	}

	payload := []byte("compressed bytes")
	if err := writeArtifact(target, payload, source); err != nil {
		t.Fatalf("writeArtifact: %v", err)
	}

	got, err := os.ReadFile(target)
	if err != nil || !bytes.Equal(got, payload) {
		t.Fatalf("artifact content mismatch: %v", err)
	}

	info, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Errorf("artifact mode = %v, want 0640", info.Mode().Perm())
	}
	if !info.ModTime().Equal(mtime) {
		t.Errorf("artifact mtime = %v, want %v", info.ModTime(), mtime)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if name := e.Name(); name != "page.html" && name != "page.html.gz" {
			t.Errorf("unexpected leftover %q", name)
		}
	}
}

func TestProcessUnitSkipsExistingTarget(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "page.html")
	target := source + ".gz"
	existing := []byte("do not touch")

	writeTestFile(t, source, htmlBody)
	writeTestFile(t, target, existing)

	gz, _ := compressor.Lookup(compressor.Gzip)
	unit := WorkUnit{
		Candidate: Candidate{Path: source, Rel: "page.html", Size: int64(len(htmlBody))},
		Backend:   gz,
		Target:    target,
	}

	out := processUnit(unit, Config{Overwrite: false})
	if out.Status != StatusSkippedExists {
		t.Fatalf("status = %s, want %s", out.Status, StatusSkippedExists)
	}
	got, err := os.ReadFile(target)
	if err != nil || !bytes.Equal(got, existing) {
		t.Fatal("existing artifact was modified")
	}
}

func TestProcessUnitSkipsWhenCompressionGrows(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "noise.txt")
	target := source + ".gz"

	gz, _ := compressor.Lookup(compressor.Gzip)

	// Gzip output used as source content: compressing it again always
	// grows it.
	incompressible, err := gz.Compress(htmlBody, 0)
	if err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, source, incompressible)

	unit := WorkUnit{
		Candidate: Candidate{Path: source, Rel: "noise.txt", Size: int64(len(incompressible))},
		Backend:   gz,
		Target:    target,
	}

	out := processUnit(unit, Config{})
	if out.Status != StatusSkippedLarger {
		t.Fatalf("status = %s, want %s", out.Status, StatusSkippedLarger)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatal("a grown artifact was written anyway")
	}
}

func TestProcessUnitOverwriteRemovesStaleArtifactOnGrowth(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "noise.txt")
	target := source + ".gz"

	gz, _ := compressor.Lookup(compressor.Gzip)
	incompressible, err := gz.Compress(htmlBody, 0)
	if err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, source, incompressible)
	writeTestFile(t, target, []byte("stale"))

	unit := WorkUnit{
		Candidate: Candidate{Path: source, Rel: "noise.txt", Size: int64(len(incompressible))},
		Backend:   gz,
		Target:    target,
	}

	out := processUnit(unit, Config{Overwrite: true})
	if out.Status != StatusSkippedLarger {
		t.Fatalf("status = %s, want %s", out.Status, StatusSkippedLarger)
	}
	// The outdated artifact must not survive the overwrite run.
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatal("stale artifact left behind after a size-increase skip")
	}
}
