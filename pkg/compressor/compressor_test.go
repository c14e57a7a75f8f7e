package compressor

import (
	"bytes"
	"strings"
	"testing"
)

var sample = []byte(strings.Repeat("<p>the quick brown fox jumps over the lazy dog</p>\n", 40))

func TestRoundTrip(t *testing.T) {
	for _, b := range All() {
		blob, err := b.Compress(sample, 0)
		if err != nil {
			t.Fatalf("%s: compress: %v", b.ID, err)
		}
		if len(blob) >= len(sample) {
			t.Errorf("%s: output (%d bytes) not smaller than input (%d bytes)", b.ID, len(blob), len(sample))
		}
		back, err := b.Decompress(blob)
		if err != nil {
			t.Fatalf("%s: decompress: %v", b.ID, err)
		}
		if !bytes.Equal(back, sample) {
			t.Errorf("%s: round trip mismatch", b.ID)
		}
	}
}

func TestDeterministic(t *testing.T) {
	for _, b := range All() {
		first, err := b.Compress(sample, 0)
		if err != nil {
			t.Fatalf("%s: compress: %v", b.ID, err)
		}
		second, err := b.Compress(sample, 0)
		if err != nil {
			t.Fatalf("%s: compress: %v", b.ID, err)
		}
		if !bytes.Equal(first, second) {
			t.Errorf("%s: two runs over identical input differ", b.ID)
		}
	}
}

func TestUnavailableBackendRefusesToCompress(t *testing.T) {
	b, ok := Lookup(Brotli)
	if !ok {
		t.Fatal("brotli backend missing from registry")
	}
	b.Available = false
	if _, err := b.Compress(sample, 0); err == nil {
		t.Fatal("expected an error from an unavailable backend")
	}
}

func TestZopfliEmitsGzipBitstream(t *testing.T) {
	z, _ := Lookup(Zopfli)
	g, _ := Lookup(Gzip)

	blob, err := z.Compress(sample, 0)
	if err != nil {
		t.Fatalf("zopfli compress: %v", err)
	}
	back, err := g.Decompress(blob)
	if err != nil {
		t.Fatalf("gzip reader rejected zopfli output: %v", err)
	}
	if !bytes.Equal(back, sample) {
		t.Fatal("zopfli output did not decompress back to the input")
	}
	if z.Suffix != ".gz" || g.Suffix != ".gz" {
		t.Fatalf("gzip and zopfli must share the .gz suffix, got %q and %q", g.Suffix, z.Suffix)
	}
}

func TestSuffixes(t *testing.T) {
	got := Suffixes()
	want := map[string]bool{".gz": true, ".br": true, ".zst": true}
	if len(got) != len(want) {
		t.Fatalf("expected %d suffixes, got %v", len(want), got)
	}
	for _, s := range got {
		if !want[s] {
			t.Errorf("unexpected suffix %q", s)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, ok := Lookup(ID("lzma")); ok {
		t.Fatal("unknown backend should not resolve")
	}
}
