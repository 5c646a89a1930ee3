// SPDX-License-Identifier: MIT
// Source: github.com/lisamanaa189-commits/animated-fortnight

package pak

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ListEntries opens a PAK archive and returns entry metadata without payload reads.
func ListEntries(path string) ([]Entry, error) {
	return ListEntriesWithOptions(path, ReaderOptions{})
}

// ListEntriesWithOptions opens a PAK archive and returns entry metadata
// without payload reads using explicit reader options.
func ListEntriesWithOptions(path string, opts ReaderOptions) ([]Entry, error) {
	f, size, err := openFileWithSize(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r, err := NewReaderFromReaderAtWithOptions(f, size, opts)
	if err != nil {
		return nil, err
	}

	return r.Entries(), nil
}

// ReadArchiveInfo opens a PAK archive and returns archive-level metadata.
func ReadArchiveInfo(path string) (ArchiveInfo, error) {
	f, size, err := openFileWithSize(path)
	if err != nil {
		return ArchiveInfo{}, err
	}
	defer func() { _ = f.Close() }()

	return ReadArchiveInfoFromReaderAt(f, size)
}

// ReadArchiveInfoFromReaderAt returns archive-level metadata from a
// random-access source. An encrypted index is reported through the Encrypted
// flag rather than an error, so callers can still inspect such archives.
func ReadArchiveInfoFromReaderAt(ra io.ReaderAt, size int64) (ArchiveInfo, error) {
	if ra == nil {
		return ArchiveInfo{}, ErrNilReader
	}

	r, err := NewReaderFromReaderAt(ra, size)
	if err != nil {
		if errors.Is(err, ErrEncryptedIndex) {
			ft, ftErr := parseFooter(ra, size)
			if ftErr != nil {
				return ArchiveInfo{}, ftErr
			}

			return ArchiveInfo{
				Version:     ft.version,
				IndexOffset: ft.indexOffset,
				IndexSize:   ft.indexSize,
				Encrypted:   true,
			}, nil
		}

		return ArchiveInfo{}, err
	}

	return r.Info(), nil
}

// openFileWithSize opens a file and returns a handle plus current size.
func openFileWithSize(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open PAK: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("stat: %w", err)
	}

	return f, fi.Size(), nil
}
