package compressor

import (
	"github.com/klauspost/compress/zstd"
)

func compressZstd(data []byte, level int) ([]byte, error) {
	// Single encoder goroutine keeps the frame layout deterministic;
	// parallelism comes from the pipeline's worker pool instead.
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, err
	}
	out := enc.EncodeAll(data, nil)
	return out, enc.Close()
}

func decompressZstd(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
