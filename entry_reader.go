// SPDX-License-Identifier: MIT
// Source: github.com/lisamanaa189-commits/animated-fortnight

package pak

import (
	"bytes"
	"fmt"
	"io"
)

// nopCloser wraps a reader and provides a no-op close.
type nopCloser struct {
	io.Reader
}

// Close closes nopCloser (no-op).
func (nopCloser) Close() error {
	return nil
}

// OpenEntry opens the named entry for reading.
// The returned stream yields fully reassembled, decompressed content.
func (r *Reader) OpenEntry(name string) (io.ReadCloser, error) {
	if r == nil || r.ra == nil {
		return nil, ErrNilReader
	}
	if r.isClosed() {
		return nil, ErrClosed
	}

	entry, ok := r.Entry(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}

	return r.openEntryByInfo(&entry)
}

// OpenEntryInfo opens an entry stream by already resolved metadata.
func (r *Reader) OpenEntryInfo(entry Entry) (io.ReadCloser, error) {
	if r == nil || r.ra == nil {
		return nil, ErrNilReader
	}
	if r.isClosed() {
		return nil, ErrClosed
	}

	return r.openEntryByInfo(&entry)
}

// openEntryByInfo opens a payload stream for already resolved entry metadata.
func (r *Reader) openEntryByInfo(entry *Entry) (io.ReadCloser, error) {
	if entry.Encrypted {
		return nil, fmt.Errorf("%w: %s", ErrEncryptedPayload, entry.Path)
	}

	// Raw entries stream straight from the archive without buffering.
	if !entry.IsCompressed() {
		sr := io.NewSectionReader(r.ra, int64(entry.Offset), int64(entry.UncompressedSize)) //nolint:gosec // stored sizes fit section bounds
		return nopCloser{Reader: sr}, nil
	}

	data, err := r.readEntryData(entry)
	if err != nil {
		return nil, err
	}

	return nopCloser{Reader: bytes.NewReader(data)}, nil
}

// ReadEntry reads the full decompressed content of the named entry.
func (r *Reader) ReadEntry(name string) ([]byte, error) {
	if r == nil || r.ra == nil {
		return nil, ErrNilReader
	}
	if r.isClosed() {
		return nil, ErrClosed
	}

	entry, ok := r.Entry(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}

	return r.readEntryData(&entry)
}

// ReadEntryInfo reads the full decompressed content for already resolved
// entry metadata.
func (r *Reader) ReadEntryInfo(entry Entry) ([]byte, error) {
	if r == nil || r.ra == nil {
		return nil, ErrNilReader
	}
	if r.isClosed() {
		return nil, ErrClosed
	}

	return r.readEntryData(&entry)
}
