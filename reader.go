// SPDX-License-Identifier: MIT
// Source: github.com/lisamanaa189-commits/animated-fortnight

package pak

import (
	"fmt"
	"io"
	"iter"
	"os"
	"sync"
)

// Reader provides read-only access to a parsed PAK archive.
type Reader struct {
	// ra is the underlying random-access reader used for payload reads.
	ra io.ReaderAt
	// file is set when Reader owns an *os.File opened via Open.
	file *os.File
	// byPath maps normalized entry path to entries index.
	byPath map[string]int
	// mountPoint is the raw mount point string from the index.
	mountPoint string
	// entries stores parsed immutable entry metadata in index order.
	entries []Entry
	// size is total source size in bytes.
	size int64
	// footer stores decoded archive-level metadata.
	footer footer
	// replaced counts duplicate paths overwritten during parse.
	replaced int
	// skipped counts malformed entries dropped during parse.
	skipped int
	// mu guards closed state and close operation.
	mu sync.Mutex
	// closed reports whether Close was already called.
	closed bool
}

// Open opens a PAK file by path and parses footer and index structures.
func Open(path string) (*Reader, error) {
	return OpenWithOptions(path, ReaderOptions{})
}

// OpenWithOptions opens a PAK file by path and parses footer and index
// structures using explicit reader options.
func OpenWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open PAK: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat: %w", err)
	}

	r, err := NewReaderFromReaderAtWithOptions(f, fi.Size(), opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	r.file = f
	return r, nil
}

// NewReaderFromReaderAt parses a PAK archive from an existing ReaderAt and known size.
func NewReaderFromReaderAt(ra io.ReaderAt, size int64) (*Reader, error) {
	return NewReaderFromReaderAtWithOptions(ra, size, ReaderOptions{})
}

// NewReaderFromReaderAtWithOptions parses a PAK archive from an existing
// ReaderAt and known size using explicit reader options.
func NewReaderFromReaderAtWithOptions(ra io.ReaderAt, size int64, opts ReaderOptions) (*Reader, error) {
	opts.applyDefaults()

	if ra == nil {
		return nil, ErrNilReader
	}

	r := &Reader{ra: ra, size: size}

	ft, err := parseFooter(ra, size)
	if err != nil {
		return nil, err
	}
	r.footer = ft

	if err := r.parseIndex(ra, ft, opts); err != nil {
		return nil, err
	}

	if err := r.applyEntryFilters(opts); err != nil {
		return nil, err
	}

	return r, nil
}

// Info returns archive-level metadata from the footer and index parse.
func (r *Reader) Info() ArchiveInfo {
	if r == nil {
		return ArchiveInfo{}
	}

	return ArchiveInfo{
		Version:        r.footer.version,
		MountPoint:     r.mountPoint,
		IndexOffset:    r.footer.indexOffset,
		IndexSize:      r.footer.indexSize,
		Encrypted:      r.footer.encrypted,
		EntryCount:     len(r.entries),
		ReplacedPaths:  r.replaced,
		SkippedEntries: r.skipped,
	}
}

// Version returns the PAK format version from the footer.
func (r *Reader) Version() uint32 {
	if r == nil {
		return 0
	}

	return r.footer.version
}

// MountPoint returns the raw mount point string from the index.
func (r *Reader) MountPoint() string {
	if r == nil {
		return ""
	}

	return r.mountPoint
}

// Entries returns a copy of parsed entries in index order.
func (r *Reader) Entries() []Entry {
	if r == nil {
		return nil
	}

	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// Entry resolves one entry by normalized path.
func (r *Reader) Entry(path string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}

	idx, ok := r.byPath[NormalizePath(path)]
	if !ok {
		return Entry{}, false
	}

	return r.entries[idx], true
}

// Summaries returns a restartable iterator of listing projections over the
// parsed entries. It never touches payload bytes.
func (r *Reader) Summaries() iter.Seq[EntrySummary] {
	return func(yield func(EntrySummary) bool) {
		if r == nil {
			return
		}

		for i := range r.entries {
			s := EntrySummary{
				Path:             r.entries[i].Path,
				UncompressedSize: r.entries[i].UncompressedSize,
				Compressed:       r.entries[i].IsCompressed(),
			}
			if !yield(s) {
				return
			}
		}
	}
}

// Close closes the underlying file if reader owns one.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	r.closed = true
	if r.file != nil {
		return r.file.Close()
	}

	return nil
}

// isClosed reports whether Close was already called.
func (r *Reader) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
