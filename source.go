package halfblock

import (
	"bufio"
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	magicGzip = []byte{0x1f, 0x8b}
	magicZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

type readCloser struct {
	io.Reader
	close func() error
}

func (rc *readCloser) Close() error {
	return rc.close()
}

// NewSource returns a reader of the raw transcript held in r. Gzip and zstd
// compressed input is detected from its magic bytes and decompressed, anything
// else is assumed to be an uncompressed transcript. Closing the returned
// reader does not close r.
func NewSource(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReaderSize(r, readSize)

	magic, err := br.Peek(len(magicZstd))
	if err != nil && err != io.EOF {
		return nil, err
	}

	switch {
	case bytes.HasPrefix(magic, magicGzip):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		return zr, nil
	case bytes.HasPrefix(magic, magicZstd):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	default:
		return &readCloser{br, func() error { return nil }}, nil
	}
}
