// SPDX-License-Identifier: MIT
// Source: github.com/lisamanaa189-commits/animated-fortnight

package pak

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/oriath-net/gooz"
)

// decompressFunc inflates one compressed span. expectedSize is the upper
// bound of decompressed output and is required by codecs that decode into a
// caller-sized buffer.
type decompressFunc func(src []byte, expectedSize int) ([]byte, error)

// codecFor maps a compression method code to its decompressor. Unknown codes
// return nil, which callers treat as identity passthrough: new codec codes
// appear as the format evolves and must not hard-fail extraction.
func codecFor(method CompressionMethod) decompressFunc {
	switch method {
	case MethodZlib:
		return decompressZlib
	case MethodGzip:
		return decompressGzip
	case MethodOodle:
		return decompressOodle
	default:
		return nil
	}
}

// decompressSpan inflates one span, passing unknown codecs through unchanged.
func decompressSpan(method CompressionMethod, src []byte, expectedSize int) ([]byte, error) {
	codec := codecFor(method)
	if codec == nil {
		return src, nil
	}

	return codec(src, expectedSize)
}

// decompressZlib inflates one zlib (deflate) span.
func decompressZlib(src []byte, expectedSize int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	defer func() { _ = zr.Close() }()

	return readAllSized(zr, expectedSize)
}

// decompressGzip inflates one gzip-framed deflate span.
func decompressGzip(src []byte, expectedSize int) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	defer func() { _ = zr.Close() }()

	return readAllSized(zr, expectedSize)
}

// decompressOodle inflates one Oodle span into a pre-sized output buffer.
func decompressOodle(src []byte, expectedSize int) ([]byte, error) {
	dst := make([]byte, expectedSize)
	n, err := gooz.Decompress(src, dst)
	if err != nil {
		return nil, fmt.Errorf("oodle: %w", err)
	}
	if n > 0 && n < len(dst) {
		dst = dst[:n]
	}

	return dst, nil
}

// readAllSized reads a decompression stream with a pre-grown buffer.
func readAllSized(src io.Reader, expectedSize int) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, expectedSize))
	if _, err := buf.ReadFrom(src); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// readEntryData reassembles the final decompressed payload for one entry.
// A block that fails to decompress degrades to its raw bytes instead of
// aborting the entry: one damaged block must not forfeit the rest.
func (r *Reader) readEntryData(entry *Entry) ([]byte, error) {
	if entry.Encrypted {
		return nil, fmt.Errorf("%w: %s", ErrEncryptedPayload, entry.Path)
	}

	if !entry.IsCompressed() {
		size, err := checkedUint64ToInt(entry.UncompressedSize)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", entry.Path, err)
		}

		return r.readSpan(int64(entry.Offset), size) //nolint:gosec // validated against MaxInt
	}

	if len(entry.Blocks) > 0 {
		return r.readBlockedEntry(entry)
	}

	compressed, err := checkedUint64ToInt(entry.CompressedSize)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", entry.Path, err)
	}

	src, err := r.readSpan(int64(entry.Offset), compressed) //nolint:gosec // validated against MaxInt
	if err != nil {
		return nil, err
	}

	expected, err := checkedUint64ToInt(entry.UncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", entry.Path, err)
	}

	out, err := decompressSpan(entry.Method, src, expected)
	if err != nil {
		return nil, fmt.Errorf("decompress entry %s: %w", entry.Path, err)
	}

	return out, nil
}

// readBlockedEntry reassembles an entry from its compression block table.
// Block ranges are relative to the entry's data offset.
func (r *Reader) readBlockedEntry(entry *Entry) ([]byte, error) {
	expected, err := checkedUint64ToInt(entry.UncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", entry.Path, err)
	}

	out := make([]byte, 0, expected)
	for _, block := range entry.Blocks {
		if block.End < block.Start {
			continue
		}

		length, err := checkedUint64ToInt(block.End - block.Start)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", entry.Path, err)
		}

		src, err := r.readSpan(int64(entry.Offset+block.Start), length) //nolint:gosec // validated against MaxInt
		if err != nil {
			return nil, fmt.Errorf("read block of %s: %w", entry.Path, err)
		}

		remaining := expected - len(out)
		if remaining < 0 {
			remaining = 0
		}

		dec, err := decompressSpan(entry.Method, src, remaining)
		if err != nil {
			// Lossy-degrade: keep the raw block bytes and continue.
			out = append(out, src...)
			continue
		}

		out = append(out, dec...)
	}

	return out, nil
}

// readSpan reads exactly size bytes at an absolute archive offset.
func (r *Reader) readSpan(offset int64, size int) ([]byte, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(io.NewSectionReader(r.ra, offset, int64(size)), buf); err != nil {
		return nil, fmt.Errorf("read payload at %d: %w", offset, err)
	}

	return buf, nil
}

// checkedUint64ToInt converts uint64 to int with platform-safe overflow check.
func checkedUint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, ErrSizeOverflow
	}

	return int(v), nil
}
