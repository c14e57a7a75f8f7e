package compressor

import (
	"bytes"

	"github.com/foobaz/go-zopfli/zopfli"
)

// zopfliDefaultIterations matches upstream zopfli's default. More
// iterations shave a few bytes at a steep CPU cost.
const zopfliDefaultIterations = 15

func compressZopfli(data []byte, iterations int) ([]byte, error) {
	opts := zopfli.DefaultOptions()
	if iterations > 0 {
		opts.NumIterations = iterations
	}
	var buf bytes.Buffer
	if err := zopfli.GzipCompress(&opts, data, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
