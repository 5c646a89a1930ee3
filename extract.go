// SPDX-License-Identifier: MIT
// Source: github.com/lisamanaa189-commits/animated-fortnight

package pak

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// extractCopyBufferSize defines per-worker buffer size for file copy during extraction.
const extractCopyBufferSize = 64 * 1024

// extractWorkItem stores one selected entry with prepared output relative paths.
type extractWorkItem struct {
	relPath string
	relDir  string
	entry   Entry
}

// Extract writes selected entries from the archive to dstDir and returns one
// outcome per attempted entry. A failed entry never aborts the batch; its
// outcome carries the specific failure instead. Extraction is parallelized
// by MaxWorkers over positioned reads, so workers share the file handle
// without racing on a cursor.
func (r *Reader) Extract(ctx context.Context, dstDir string, opts ExtractOptions) ([]ExtractOutcome, error) {
	if r == nil || r.ra == nil {
		return nil, ErrNilReader
	}
	if r.isClosed() {
		return nil, ErrClosed
	}

	opts.applyDefaults()

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers < 1 {
		workers = 1
	}

	entries := r.entries
	if opts.Entries != nil {
		entries = opts.Entries
	}
	if len(entries) == 0 {
		return nil, nil
	}

	dstRootAbs, err := filepath.Abs(dstDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output dir: %w", err)
	}
	if err := os.MkdirAll(dstRootAbs, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	workItems, skipped := prepareExtractWorkItems(entries)
	if len(workItems) == 0 {
		return skipped, nil
	}

	if err := prepareExtractDirs(dstRootAbs, workItems); err != nil {
		return nil, err
	}

	taskCh := make(chan extractWorkItem, len(workItems))
	outcomeCh := make(chan ExtractOutcome, len(workItems))
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Go(func() {
			copyBuf := make([]byte, extractCopyBufferSize)
			for task := range taskCh {
				outcome := r.extractPreparedEntry(ctx, dstRootAbs, task, opts.FileMode, copyBuf)
				if opts.OnEntryDone != nil {
					opts.OnEntryDone(outcome)
				}

				select {
				case outcomeCh <- outcome:
				case <-ctx.Done():
					return
				}
			}
		})
	}

	for _, task := range workItems {
		select {
		case <-ctx.Done():
			close(taskCh)
			wg.Wait()
			return nil, ctx.Err()
		case taskCh <- task:
		}
	}

	close(taskCh)
	wg.Wait()
	close(outcomeCh)

	outcomes := skipped
	for outcome := range outcomeCh {
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

// prepareExtractWorkItems validates selected entries and prepares relative fs
// paths. Entries with unusable paths become failed outcomes up front.
func prepareExtractWorkItems(entries []Entry) ([]extractWorkItem, []ExtractOutcome) {
	workItems := make([]extractWorkItem, 0, len(entries))
	var skipped []ExtractOutcome
	for _, entry := range entries {
		if strings.TrimSpace(entry.Path) == "" {
			continue
		}

		normalizedPath, err := normalizeExtractEntryPath(entry.Path)
		if err != nil {
			skipped = append(skipped, ExtractOutcome{
				Path: entry.Path,
				Err:  fmt.Errorf("normalize entry path: %w", err),
			})
			continue
		}

		relPath := filepath.FromSlash(normalizedPath)
		relDir := filepath.Dir(relPath)
		if relDir == "." {
			relDir = ""
		}

		workItems = append(workItems, extractWorkItem{
			entry:   entry,
			relPath: relPath,
			relDir:  relDir,
		})
	}

	return workItems, skipped
}

// prepareExtractDirs creates all unique parent directories needed by work items.
func prepareExtractDirs(dstRootAbs string, workItems []extractWorkItem) error {
	seen := make(map[string]struct{}, len(workItems))
	for _, task := range workItems {
		if task.relDir == "" {
			continue
		}

		dirPath := filepath.Join(dstRootAbs, task.relDir)
		key := strings.ToLower(dirPath)
		if _, exists := seen[key]; exists {
			continue
		}

		seen[key] = struct{}{}
		if err := os.MkdirAll(dirPath, 0o750); err != nil {
			return fmt.Errorf("create output directory %s: %w", dirPath, err)
		}
	}

	return nil
}

// extractPreparedEntry writes one prepared work item to destination root.
func (r *Reader) extractPreparedEntry(
	ctx context.Context,
	dstRootAbs string,
	task extractWorkItem,
	fileMode ExtractFileMode,
	copyBuf []byte,
) ExtractOutcome {
	outcome := ExtractOutcome{Path: task.entry.Path}

	select {
	case <-ctx.Done():
		outcome.Err = ctx.Err()
		return outcome
	default:
	}

	outPath := filepath.Join(dstRootAbs, task.relPath)
	outcome.OutputPath = outPath

	rc, err := r.openEntryByInfo(&task.entry)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	defer func() { _ = rc.Close() }()

	file, err := openExtractFile(outPath, fileMode)
	if err != nil {
		outcome.Err = fmt.Errorf("open %s: %w", task.entry.Path, err)
		return outcome
	}

	written, copyErr := copyExtractData(file, rc, copyBuf)
	closeErr := file.Close()
	outcome.Written = written

	if copyErr != nil {
		outcome.Err = fmt.Errorf("write %s: %w", task.entry.Path, copyErr)
		return outcome
	}
	if closeErr != nil {
		outcome.Err = fmt.Errorf("close %s: %w", task.entry.Path, closeErr)
		return outcome
	}

	return outcome
}

// openExtractFile opens output path according to selected extract file mode.
func openExtractFile(path string, mode ExtractFileMode) (*os.File, error) {
	switch mode {
	case ExtractFileModeAuto:
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil {
			return file, nil
		}
		if !os.IsExist(err) {
			return nil, err
		}

		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	case ExtractFileModeTruncate:
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	case ExtractFileModeCreateOnly:
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	default:
		return nil, fmt.Errorf("unknown extract file mode %q", mode)
	}
}

// copyExtractData copies one entry stream to output file using fixed worker buffer.
func copyExtractData(dst *os.File, src io.Reader, buf []byte) (int64, error) {
	if len(buf) == 0 {
		return 0, io.ErrShortBuffer
	}

	var total int64
	for {
		readN, readErr := src.Read(buf)
		if readN > 0 {
			writeN, writeErr := dst.Write(buf[:readN])
			total += int64(writeN)

			if writeErr != nil {
				return total, writeErr
			}
			if writeN != readN {
				return total, io.ErrShortWrite
			}
		}

		if readErr == nil {
			continue
		}
		if readErr == io.EOF {
			return total, nil
		}

		return total, readErr
	}
}
