// SPDX-License-Identifier: MIT
// Source: github.com/lisamanaa189-commits/animated-fortnight

package pak

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// indexReadBufferSize is the sequential read buffer for index parsing.
const indexReadBufferSize = 64 * 1024

// entryFixedSize is the per-entry fixed field block before the version-gated
// timestamp: offset, compressed size, uncompressed size, method.
const entryFixedSize = 8 + 8 + 8 + 4

// parseIndex reads the mount point and all index entries described by the
// footer. Per-entry decode failures skip the entry and continue; a corrupt
// count field aborts the whole parse because every later read would be
// misaligned.
func (r *Reader) parseIndex(ra io.ReaderAt, ft footer, opts ReaderOptions) error {
	if ft.encrypted {
		return ErrEncryptedIndex
	}

	// Clamp a garbage index size to the bytes actually present.
	indexSize := ft.indexSize
	if remaining := uint64(r.size) - ft.indexOffset; indexSize > remaining { //nolint:gosec // offset < size per parseFooter
		indexSize = remaining
	}

	sr := io.NewSectionReader(ra, int64(ft.indexOffset), int64(indexSize)) //nolint:gosec // bounds checked above
	br := bufio.NewReaderSize(sr, indexReadBufferSize)

	mountPoint, _, err := readIndexString(br)
	if err != nil {
		return fmt.Errorf("read mount point: %w", err)
	}
	r.mountPoint = mountPoint

	var countBuf [4]byte
	if _, err := io.ReadFull(br, countBuf[:]); err != nil {
		return fmt.Errorf("read entry count: %w", err)
	}

	entryCount := binary.LittleEndian.Uint32(countBuf[:])
	if entryCount > opts.MaxEntryCount {
		return fmt.Errorf("%w: %d entries", ErrSuspiciousEntryCount, entryCount)
	}

	r.entries = make([]Entry, 0, entryCount)
	r.byPath = make(map[string]int, entryCount)

	for i := uint32(0); i < entryCount; i++ {
		entry, err := readIndexEntry(br, ft.version)
		if err != nil {
			if errors.Is(err, ErrSuspiciousEntryCount) {
				return err
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				// Stream exhausted; everything after this point is gone.
				r.skipped += int(entryCount - i)
				return nil
			}

			r.skipped++
			continue
		}

		entry.Path = normalizeEntryPath(entry.Path, mountPoint)
		if entry.Path == "" {
			continue
		}

		if prev, exists := r.byPath[entry.Path]; exists {
			// Last-seen entry wins for re-listed paths.
			r.entries[prev] = entry
			r.replaced++
			continue
		}

		r.byPath[entry.Path] = len(r.entries)
		r.entries = append(r.entries, entry)
	}

	return nil
}

// readIndexEntry decodes one entry record at the current stream position.
// The record shape is self-describing: the method field gates the block
// table and the archive version gates the timestamp.
func readIndexEntry(br *bufio.Reader, version uint32) (Entry, error) {
	path, pathValid, err := readIndexString(br)
	if err != nil {
		return Entry{}, err
	}

	var fields [entryFixedSize]byte
	if _, err := io.ReadFull(br, fields[:]); err != nil {
		return Entry{}, fmt.Errorf("read entry fields: %w", err)
	}

	rawMethod := binary.LittleEndian.Uint32(fields[24:28])
	entry := Entry{
		Path:             path,
		PathValid:        pathValid,
		Offset:           binary.LittleEndian.Uint64(fields[0:8]),
		CompressedSize:   binary.LittleEndian.Uint64(fields[8:16]),
		UncompressedSize: binary.LittleEndian.Uint64(fields[16:24]),
		// The on-disk method field doubles as an encryption flag; split it
		// into orthogonal values here and never carry the raw integer on.
		Method:    CompressionMethod(rawMethod &^ methodEncrypted),
		Encrypted: rawMethod&methodEncrypted != 0,
	}

	if version >= timestampsFrom {
		var ts [8]byte
		if _, err := io.ReadFull(br, ts[:]); err != nil {
			return Entry{}, fmt.Errorf("read entry timestamp: %w", err)
		}

		entry.Timestamp = binary.LittleEndian.Uint64(ts[:])
	}

	if _, err := io.ReadFull(br, entry.Hash[:]); err != nil {
		return Entry{}, fmt.Errorf("read entry hash: %w", err)
	}

	if entry.Method != MethodNone {
		blocks, err := readBlockTable(br)
		if err != nil {
			return Entry{}, err
		}

		entry.Blocks = blocks
	}

	return entry, nil
}

// readBlockTable decodes the compression block table for one entry.
func readBlockTable(br *bufio.Reader) ([]CompressionBlock, error) {
	var countBuf [4]byte
	if _, err := io.ReadFull(br, countBuf[:]); err != nil {
		return nil, fmt.Errorf("read block count: %w", err)
	}

	blockCount := binary.LittleEndian.Uint32(countBuf[:])
	if blockCount > maxBlockCount {
		return nil, fmt.Errorf("%w: %d compression blocks", ErrSuspiciousEntryCount, blockCount)
	}
	if blockCount == 0 {
		return nil, nil
	}

	blocks := make([]CompressionBlock, blockCount)
	buf := make([]byte, 16)
	for i := range blocks {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("read block range: %w", err)
		}

		blocks[i] = CompressionBlock{
			Start: binary.LittleEndian.Uint64(buf[0:8]),
			End:   binary.LittleEndian.Uint64(buf[8:16]),
		}
	}

	return blocks, nil
}
